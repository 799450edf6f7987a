// Package handler provides the HTTP handlers of the chat-rag service.
package handler
