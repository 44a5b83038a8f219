package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestConfigManager_LoadFields(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		data        string
		wantErr     bool
		wantProject string
		wantFields  int
	}{
		{
			name:     "valid json",
			fileName: "fields.json",
			data: `{
				"project_name": "租赁合同",
				"fields": [
					{"key": "CLIENT", "value": "ООО Ромашка"},
					{"key": "{DATE}", "value": "01.02.2024"}
				]
			}`,
			wantProject: "租赁合同",
			wantFields:  2,
		},
		{
			name:     "valid yaml",
			fileName: "fields.yaml",
			data: `project_name: demo
fields:
  - key: CLIENT
    value: Acme
  - key: AMOUNT
    value: "1000"
`,
			wantProject: "demo",
			wantFields:  2,
		},
		{
			name:       "yml extension and empty value",
			fileName:   "fields.yml",
			data:       "fields:\n  - key: NOTE\n    value: \"\"\n",
			wantFields: 1,
		},
		{
			name:       "empty field list",
			fileName:   "fields.json",
			data:       `{"project_name": "x", "fields": []}`,
			wantProject: "x",
		},
		{
			name:     "invalid json",
			fileName: "fields.json",
			data:     `{"fields": [`,
			wantErr:  true,
		},
		{
			name:     "missing key",
			fileName: "fields.json",
			data:     `{"fields": [{"value": "John"}]}`,
			wantErr:  true,
		},
		{
			name:     "duplicate key after brace stripping",
			fileName: "fields.json",
			data:     `{"fields": [{"key": "A", "value": "1"}, {"key": "{A}", "value": "2"}]}`,
			wantErr:  true,
		},
		{
			name:     "unsupported extension",
			fileName: "fields.txt",
			data:     `{}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.fileName, tt.data)

			fields, err := NewConfigManager().LoadFields(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProject, fields.ProjectName)
			assert.Len(t, fields.Fields, tt.wantFields)
		})
	}
}

func TestConfigManager_LoadFields_PathErrors(t *testing.T) {
	cm := NewConfigManager()

	_, err := cm.LoadFields("")
	assert.Error(t, err)

	_, err = cm.LoadFields(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfigManager_GetFieldMap(t *testing.T) {
	cm := NewConfigManager()
	fields := &FieldsFile{
		Fields: []Field{
			{Key: "{CLIENT}", Value: "Acme"},
			{Key: " DATE ", Value: "2024"},
			{Key: "NOTE", Value: ""},
		},
	}

	got := cm.GetFieldMap(fields)
	assert.Equal(t, map[string]string{
		"CLIENT": "Acme",
		"DATE":   "2024",
		"NOTE":   "",
	}, got)

	assert.Nil(t, cm.GetFieldMap(nil))
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CLIENT", "CLIENT"},
		{"{CLIENT}", "CLIENT"},
		{"  {a b}  ", "a b"},
		{"{", "{"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), tt.in)
	}
}
