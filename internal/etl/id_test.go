package etl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JhonatanRC03/chat-rag/pkg/tabular"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name string
		row  tabular.Row
		idx  int
		want string
	}{
		{
			name: "explicit id field",
			row:  tabular.Row{"id": "row-7", "nombre": "algo"},
			idx:  0,
			want: "row-7",
		},
		{
			name: "uppercase ID field",
			row:  tabular.Row{"ID": "ROW-8"},
			idx:  0,
			want: "ROW-8",
		},
		{
			name: "obra_id field",
			row:  tabular.Row{"obra_id": "OBR-1"},
			idx:  3,
			want: "OBR-1",
		},
		{
			name: "numeric id kept as string",
			row:  tabular.Row{"codigo": int64(42)},
			idx:  0,
			want: "42",
		},
		{
			name: "obra plus fecha composite",
			row:  tabular.Row{"obra": "Torre Norte", "fecha": "2024-01-15"},
			idx:  2,
			want: "Torre_Norte_2024-01-15_2",
		},
		{
			name: "nombre fallback",
			row:  tabular.Row{"nombre": "Cimentación"},
			idx:  4,
			want: "Cimentación_4",
		},
		{
			name: "positional fallback on empty row",
			row:  tabular.Row{},
			idx:  9,
			want: "item_9",
		},
		{
			name: "positional fallback when all cells empty",
			row:  tabular.Row{"a": nil, "b": ""},
			idx:  1,
			want: "item_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveID(tt.row, tt.idx))
		})
	}
}

func TestDeriveIDComposite(t *testing.T) {
	row := tabular.Row{"zona": "sur", "material": "acero", "cantidad": int64(12), "unidad": "kg"}

	id := DeriveID(row, 5)
	assert.True(t, strings.HasPrefix(id, "item_5_"))
	assert.LessOrEqual(t, len(id), maxDerivedIDLen)

	// Deterministic regardless of map iteration.
	assert.Equal(t, id, DeriveID(row, 5))
}

func TestDeriveIDTruncatesLongComposite(t *testing.T) {
	row := tabular.Row{"campo": strings.Repeat("x", 200)}

	id := DeriveID(row, 0)
	assert.LessOrEqual(t, len(id), maxDerivedIDLen)
}
