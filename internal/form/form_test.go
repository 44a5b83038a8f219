package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/contract_filler/internal/domain"
)

func TestCollect(t *testing.T) {
	fields, err := Collect([]string{"CLIENT", "DATE"}, map[string]string{
		"CLIENT": "  Acme  ",
		"DATE":   "01.02.2024",
		"EXTRA":  "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"CLIENT": "Acme", "DATE": "01.02.2024"}, fields)
}

func TestCollect_Missing(t *testing.T) {
	_, err := Collect([]string{"B", "A", "C"}, map[string]string{
		"A": "ok",
		"B": "   ",
	})
	require.Error(t, err)

	var missing *domain.FieldMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"B", "C"}, missing.Fields)
	assert.True(t, errors.Is(err, domain.ErrFieldMissing))
}

func TestCollect_NoTags(t *testing.T) {
	fields, err := Collect(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestMerge(t *testing.T) {
	got := Merge(
		map[string]string{"A": "1", "B": "2"},
		nil,
		map[string]string{"B": "3"},
	)
	assert.Equal(t, map[string]string{"A": "1", "B": "3"}, got)
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "contract", want: "contract.docx"},
		{in: "  contract.docx  ", want: "contract.docx"},
		{in: "Report.DOCX", want: "Report.DOCX"},
		{in: "../../etc/passwd", want: "....etcpasswd.docx"},
		{in: `a\b:c`, want: "abc.docx"},
		{in: "Договор аренды", want: "Договор аренды.docx"},
		{in: "cafe\u0301", want: "caf\u00e9.docx"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: ".docx", wantErr: true},
		{in: "..", wantErr: true},
		{in: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := OutputFileName(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
