package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/allanpk716/contract_filler/internal/docxtest"
	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/processor"
	"github.com/allanpk716/contract_filler/pkg/docx"
)

func paragraphTexts(t *testing.T, path string) []string {
	t.Helper()
	doc, err := docx.Open(path)
	require.NoError(t, err)
	defer doc.Close()

	var texts []string
	for _, p := range doc.AllParagraphs() {
		texts = append(texts, p.Text())
	}
	return texts
}

func TestFillSingleFile(t *testing.T) {
	template := docxtest.Create(t, "contract.docx", docxtest.Paragraph("Agreement between {CLIENT} and {COMPANY}"))
	output := filepath.Join(t.TempDir(), "nested", "out.docx")
	proc := processor.NewDocumentProcessor()

	result, err := FillSingleFile(context.Background(), proc, template, output,
		map[string]string{"CLIENT": "Acme Inc", "COMPANY": "Globex"}, false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Replacements)
	assert.Equal(t, 2, documentTagCount(result))
	assert.Equal(t, []string{"Agreement between Acme Inc and Globex"}, paragraphTexts(t, output))
}

func TestFillSingleFile_MissingField(t *testing.T) {
	template := docxtest.Create(t, "contract.docx", docxtest.Paragraph("{CLIENT} {COMPANY}"))
	output := filepath.Join(t.TempDir(), "out.docx")
	proc := processor.NewDocumentProcessor()

	_, err := FillSingleFile(context.Background(), proc, template, output,
		map[string]string{"CLIENT": "Acme"}, false, zap.NewNop())
	var missing *domain.FieldMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"COMPANY"}, missing.Fields)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))

	// 允许部分填充时未提供的占位符保持原样
	result, err := FillSingleFile(context.Background(), proc, template, output,
		map[string]string{"CLIENT": "Acme"}, true, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"COMPANY"}, result.Unfilled)
	assert.Equal(t, 2, documentTagCount(result))
	assert.Equal(t, []string{"Acme {COMPANY}"}, paragraphTexts(t, output))
}

func TestFillSingleFile_InputError(t *testing.T) {
	_, err := FillSingleFile(context.Background(), processor.NewDocumentProcessor(),
		filepath.Join(t.TempDir(), "missing.docx"), filepath.Join(t.TempDir(), "out.docx"),
		nil, false, zap.NewNop())
	assert.True(t, errors.Is(err, domain.ErrInput))
}

func TestProcessBatchFiles(t *testing.T) {
	inputDir := t.TempDir()
	docxtest.Write(t, filepath.Join(inputDir, "a.docx"), docxtest.Paragraph("Hello {NAME}"))
	require.NoError(t, os.MkdirAll(filepath.Join(inputDir, "sub"), 0755))
	docxtest.Write(t, filepath.Join(inputDir, "sub", "b.docx"), docxtest.Table([]string{"{NAME}", "{OTHER}"}))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "broken.docx"), []byte("broken"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "~$a.docx"), []byte("lock"), 0644))

	core, logs := observer.New(zap.InfoLevel)
	outputDir := filepath.Join(t.TempDir(), "out")
	result, err := ProcessBatchFiles(context.Background(), processor.NewDocumentProcessor(),
		inputDir, outputDir, map[string]string{"NAME": "World"}, zap.New(core))
	require.NoError(t, err)

	// 进度以结构化字段输出
	progress := logs.FilterMessage("处理文件").All()
	require.Len(t, progress, 3)
	for i, entry := range progress {
		fields := entry.ContextMap()
		assert.Equal(t, int64(i+1), fields["index"])
		assert.Equal(t, int64(3), fields["total"])
	}

	assert.Equal(t, 2, result.ProcessedFiles)
	assert.Equal(t, 1, result.FailedFiles)
	assert.Equal(t, 2, result.Replacements)
	require.Len(t, result.Errors, 1)
	assert.True(t, errors.Is(result.Errors[0], domain.ErrInput))

	assert.Equal(t, []string{"Hello World"}, paragraphTexts(t, filepath.Join(outputDir, "a.docx")))
	assert.Equal(t, []string{"World", "{OTHER}"}, paragraphTexts(t, filepath.Join(outputDir, "sub", "b.docx")))
	_, err = os.Stat(filepath.Join(outputDir, "~$a.docx"))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessBatchFiles_Errors(t *testing.T) {
	proc := processor.NewDocumentProcessor()

	_, err := ProcessBatchFiles(context.Background(), proc, t.TempDir(), filepath.Join(t.TempDir(), "out"), nil, zap.NewNop())
	assert.Error(t, err)

	inputDir := t.TempDir()
	docxtest.Write(t, filepath.Join(inputDir, "a.docx"), docxtest.Paragraph("{X}"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := ProcessBatchFiles(ctx, proc, inputDir, filepath.Join(t.TempDir(), "out"), nil, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.ProcessedFiles)
}
