// Package etl bulk-loads tabular files (CSV, JSON, XLSX) from a data
// directory into a MongoDB collection, upserting each row by a derived or
// provided identifier.
package etl
