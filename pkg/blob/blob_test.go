package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "gridfs://documents/report.pdf", BuildURL("documents", "report.pdf"))
	assert.Equal(t, "gridfs://fs/a/b.pdf", BuildURL("fs", "a/b.pdf"))
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantBucket string
		wantName   string
		wantErr    bool
	}{
		{
			name:       "valid url",
			raw:        "gridfs://documents/report.pdf",
			wantBucket: "documents",
			wantName:   "report.pdf",
		},
		{
			name:       "name with slashes",
			raw:        "gridfs://fs/2024/q1/report.pdf",
			wantBucket: "fs",
			wantName:   "2024/q1/report.pdf",
		},
		{
			name:    "wrong scheme",
			raw:     "s3://bucket/key",
			wantErr: true,
		},
		{
			name:    "missing object name",
			raw:     "gridfs://documents/",
			wantErr: true,
		},
		{
			name:    "missing bucket",
			raw:     "gridfs:///report.pdf",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, name, err := ParseURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestURLRoundTrip(t *testing.T) {
	url := BuildURL("documents", "invoice-42.pdf")
	bucket, name, err := ParseURL(url)
	require.NoError(t, err)
	assert.Equal(t, "documents", bucket)
	assert.Equal(t, "invoice-42.pdf", name)
}
