package etl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JhonatanRC03/chat-rag/pkg/tabular"
)

// maxDerivedIDLen caps composite fallback identifiers.
const maxDerivedIDLen = 50

// idFields are checked in order for an explicit row identifier.
var idFields = []string{"id", "ID", "obra_id", "proyecto_id", "codigo", "referencia"}

// DeriveID returns the upsert identifier for a row. It prefers an explicit
// id field, then falls back to composites of naming fields, and finally to
// a positional identifier. The result is deterministic for a given row and
// index.
func DeriveID(row tabular.Row, index int) string {
	for _, field := range idFields {
		if s := valueString(row[field]); s != "" {
			return sanitizeID(s)
		}
	}

	obra := valueString(row["obra"])
	fecha := valueString(row["fecha"])
	if obra != "" && fecha != "" {
		return sanitizeID(fmt.Sprintf("%s_%s_%d", obra, fecha, index))
	}

	if nombre := valueString(row["nombre"]); nombre != "" {
		return sanitizeID(fmt.Sprintf("%s_%d", nombre, index))
	}

	if composite := compositeOfValues(row); composite != "" {
		id := fmt.Sprintf("item_%d_%s", index, composite)
		if len(id) > maxDerivedIDLen {
			id = id[:maxDerivedIDLen]
		}
		return sanitizeID(id)
	}

	return fmt.Sprintf("item_%d", index)
}

// compositeOfValues joins up to three cell values, walking fields in sorted
// order so the result does not depend on map iteration.
func compositeOfValues(row tabular.Row) string {
	fields := make([]string, 0, len(row))
	for field := range row {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	values := make([]string, 0, 3)
	for _, field := range fields {
		if s := valueString(row[field]); s != "" {
			values = append(values, s)
			if len(values) == 3 {
				break
			}
		}
	}
	return strings.Join(values, "_")
}

func valueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func sanitizeID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), " ", "_")
}
