package processor

import (
	"context"
	"errors"
	"sort"

	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/matcher"
	"github.com/allanpk716/contract_filler/pkg/docx"
)

// templateFiller 模板填充器实现
type templateFiller struct {
	tagMatcher domain.TagMatcher
}

// NewTemplateFiller 创建新的模板填充器
func NewTemplateFiller() domain.TemplateFiller {
	return &templateFiller{
		tagMatcher: matcher.NewTagMatcher(),
	}
}

// Fill 替换所有段落（含表格单元格）中映射里存在的 {tag}，并写入 outputPath
// 映射中没有的占位符保持原样；替换值不会被再次扫描
func (tf *templateFiller) Fill(ctx context.Context, doc *docx.Document, fields map[string]string, outputPath string) (*domain.FillResult, error) {
	if doc == nil {
		return nil, &domain.InputError{Err: errors.New("文档未加载")}
	}
	if outputPath == "" {
		return nil, &domain.StorageError{Err: errors.New("输出路径不能为空")}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	stats := make(map[string]*domain.ReplacementStats, len(fields))
	for tag := range fields {
		if tag != "" {
			stats[tag] = &domain.ReplacementStats{Tag: tag}
		}
	}
	unfilled := make(map[string]bool)

	var edits []docx.Edit
	replacements := 0

	for _, paragraph := range doc.AllParagraphs() {
		text := paragraph.Text()

		for _, tag := range tf.tagMatcher.FindTags(text) {
			if _, ok := fields[tag]; !ok {
				unfilled[tag] = true
			}
		}

		matches := tf.tagMatcher.FindMatches(text, fields)
		if len(matches) == 0 {
			continue
		}

		spans := make([]docx.Span, len(matches))
		tagAt := make(map[int]string, len(matches))
		for i, m := range matches {
			spans[i] = docx.Span{Start: m.StartPos, End: m.EndPos, Text: m.Replacement}
			tagAt[m.StartPos] = m.Tag
		}

		paragraphEdits, applied := paragraph.Substitute(spans)
		edits = append(edits, paragraphEdits...)

		// 未能写回的匹配视为未填充
		done := make(map[int]bool, len(applied))
		for _, sp := range applied {
			done[sp.Start] = true
		}
		for _, m := range matches {
			if !done[m.StartPos] {
				unfilled[m.Tag] = true
			}
		}

		for _, sp := range applied {
			st := stats[tagAt[sp.Start]]
			st.Occurrences++
			if paragraph.InTable {
				st.InTables++
			} else {
				st.InParagraphs++
			}
			replacements++
		}
	}

	if err := doc.SaveAs(outputPath, edits); err != nil {
		return nil, &domain.StorageError{Path: outputPath, Err: err}
	}

	result := &domain.FillResult{
		OutputPath:   outputPath,
		Replacements: replacements,
		Stats:        make([]domain.ReplacementStats, 0, len(stats)),
		Unfilled:     make([]string, 0, len(unfilled)),
	}
	for _, st := range stats {
		result.Stats = append(result.Stats, *st)
	}
	sort.Slice(result.Stats, func(i, j int) bool {
		return result.Stats[i].Tag < result.Stats[j].Tag
	})
	for tag := range unfilled {
		result.Unfilled = append(result.Unfilled, tag)
	}
	sort.Strings(result.Unfilled)

	return result, nil
}
