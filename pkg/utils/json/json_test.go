package json

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchDoc struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	SourceFile string    `json:"sourcefile"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := searchDoc{
		ID:         "doc-1",
		Content:    "quarterly report, 12 pages",
		SourceFile: "report.pdf",
		Tags:       []string{"finance", "2026"},
	}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out searchDoc
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalInvalid(t *testing.T) {
	var v map[string]interface{}
	assert.Error(t, Unmarshal([]byte(`{"broken"`), &v))
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(map[string]int{"pages": 12}))

	dec := NewDecoder(strings.NewReader(buf.String()))
	var got map[string]int
	require.NoError(t, dec.Decode(&got))
	assert.Equal(t, 12, got["pages"])
}

func TestUnicodeContent(t *testing.T) {
	in := map[string]string{"content": "informe trimestral, sección 3, 中文"}
	data, err := Marshal(in)
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
