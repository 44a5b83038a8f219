package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/contract_filler/internal/domain"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.docx", "A.DOCX", "~$b.docx", "notes.txt", "old.doc"} {
		touch(t, filepath.Join(dir, name))
	}
	touch(t, filepath.Join(dir, "nested", "c.docx"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.docx"), 0755))

	got, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.DOCX", "b.docx"}, got)
}

func TestList_EmptyAndMissing(t *testing.T) {
	got, err := List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = List(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, domain.ErrInput))
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	path, err := Resolve(dir, "contract.docx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contract.docx"), path)

	for _, bad := range []string{"", "../x.docx", "a/b.docx", `a\b.docx`, "..docx", "notes.txt", "~$lock.docx"} {
		_, err := Resolve(dir, bad)
		var inputErr *domain.InputError
		assert.True(t, errors.As(err, &inputErr), "name %q", bad)
	}
}

func TestFindDocxFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.docx"))
	touch(t, filepath.Join(dir, "sub", "b.docx"))
	touch(t, filepath.Join(dir, "sub", "~$b.docx"))
	touch(t, filepath.Join(dir, "sub", "c.txt"))

	got, err := FindDocxFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.docx"),
		filepath.Join(dir, "sub", "b.docx"),
	}, got)

	_, err = FindDocxFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
