package consumer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "consumers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
consumers:
  - key: moodle-prod
    secret: s3cr3t
  - key: canvas
    secret: "p@ss word"
`)

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	creds, err := reg.Lookup(context.Background(), "canvas")
	require.NoError(t, err)
	assert.Equal(t, "canvas", creds.ConsumerKey)
	assert.Equal(t, "p@ss word", creds.Secret)

	_, err = reg.Lookup(context.Background(), "blackboard")
	assert.ErrorIs(t, err, ErrConsumerNotFound)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "consumers: [\n"},
		{"missing secret", "consumers:\n  - key: moodle\n"},
		{"missing key", "consumers:\n  - secret: x\n"},
		{"duplicate key", "consumers:\n  - key: a\n    secret: x\n  - key: a\n    secret: y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
