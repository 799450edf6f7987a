package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertValidation(t *testing.T) {
	s := NewMilvusStore(nil, "documents", 4)
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, s.Upsert(ctx, nil))
	})

	t.Run("missing id", func(t *testing.T) {
		err := s.Upsert(ctx, []*Document{
			{Content: "hello", Embedding: []float32{1, 2, 3, 4}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no id")
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		err := s.Upsert(ctx, []*Document{
			{ID: "doc-1", Content: "hello", Embedding: []float32{1, 2}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dimension 2, want 4")
	})
}

func TestDeleteEmpty(t *testing.T) {
	s := NewMilvusStore(nil, "documents", 4)
	assert.NoError(t, s.Delete(context.Background()))
}

func TestSanitizeTerm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "presupuesto", "presupuesto"},
		{"double quotes", `obra "norte"`, "obra norte"},
		{"single quotes", "o'reilly", "oreilly"},
		{"percent wildcard", "100%", "100"},
		{"whitespace", "  hola  ", "hola"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeTerm(tt.in))
		})
	}
}
