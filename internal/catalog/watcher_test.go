package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestWatcher_RefreshesOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.docx"))

	w, err := NewWatcher(dir, zap.NewNop())
	require.NoError(t, err)
	w.debounceDur = 20 * time.Millisecond

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Equal(t, []string{"a.docx"}, w.Templates())

	touch(t, filepath.Join(dir, "b.docx"))
	touch(t, filepath.Join(dir, "ignored.txt"))

	require.Eventually(t, func() bool {
		return len(w.Templates()) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"a.docx", "b.docx"}, w.Templates())

	require.NoError(t, os.Remove(filepath.Join(dir, "a.docx")))
	require.Eventually(t, func() bool {
		got := w.Templates()
		return len(got) == 1 && got[0] == "b.docx"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w, err := NewWatcher(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))

	cancel()
	w.Stop()
	w.Stop()
}

func TestNewWatcher_MissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}
