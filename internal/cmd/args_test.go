package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"test.docx", "test_filled.docx"},
		{filepath.Join("path", "to", "file.docx"), filepath.Join("path", "to", "file_filled.docx")},
		{"document.DOCX", "document_filled.DOCX"},
		{"noext", "noext_filled"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateOutputFileName(tt.input))
		})
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"CLIENT=Acme", "{FORMULA}=a=b", "EMPTY="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"CLIENT":  "Acme",
		"FORMULA": "a=b",
		"EMPTY":   "",
	}, got)

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)

	_, err = ParseAssignments([]string{"=value"})
	assert.Error(t, err)
}

func TestLoadFieldValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`project_name: demo
fields:
  - key: "{CLIENT}"
    value: From file
  - key: DATE
    value: "2024-01-01"
`), 0644))

	got, err := LoadFieldValues(path, []string{"CLIENT=From flag"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"CLIENT": "From flag",
		"DATE":   "2024-01-01",
	}, got)

	got, err = LoadFieldValues("", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = LoadFieldValues(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}
