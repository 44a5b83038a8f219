package processor

import (
	"sort"

	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/internal/matcher"
	"github.com/allanpk716/contract_filler/pkg/docx"
)

// tagExtractor 占位符提取器实现
type tagExtractor struct {
	tagMatcher domain.TagMatcher
}

// NewTagExtractor 创建新的占位符提取器
func NewTagExtractor() domain.TagExtractor {
	return &tagExtractor{
		tagMatcher: matcher.NewTagMatcher(),
	}
}

// ExtractTags 提取正文段落和表格单元格中的占位符，去重后按名称排序
// 每个段落单独扫描，占位符不会跨段落或跨单元格
func (te *tagExtractor) ExtractTags(doc *docx.Document) []string {
	tags := []string{}
	if doc == nil {
		return tags
	}

	seen := make(map[string]bool)
	for _, paragraph := range doc.AllParagraphs() {
		for _, tag := range te.tagMatcher.FindTags(paragraph.Text()) {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	sort.Strings(tags)
	return tags
}
