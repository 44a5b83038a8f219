package domain

import (
	"context"

	"github.com/allanpk716/contract_filler/pkg/docx"
)

// DocumentProcessor 面向前端的模板处理器接口：先提取占位符，再填充
type DocumentProcessor interface {
	ExtractTags(templatePath string) ([]string, error)
	FillTemplate(ctx context.Context, templatePath string, fields map[string]string, outputPath string) (*FillResult, error)
	ValidateDocument(templatePath string) error
}

// TagExtractor 占位符提取器接口
type TagExtractor interface {
	ExtractTags(doc *docx.Document) []string
}

// TemplateFiller 模板填充器接口
type TemplateFiller interface {
	Fill(ctx context.Context, doc *docx.Document, fields map[string]string, outputPath string) (*FillResult, error)
}

// TagMatcher 占位符匹配器接口
type TagMatcher interface {
	FindTags(content string) []string
	FindMatches(content string, fields map[string]string) []Match
}

// Match 表示段落文本中的一个占位符匹配
type Match struct {
	Tag         string // 占位符名称 (如 CLIENT)
	Replacement string // 替换值
	StartPos    int    // 开始位置（包含 {）
	EndPos      int    // 结束位置（包含 }）
}

// FillResult 填充结果
type FillResult struct {
	OutputPath   string
	Replacements int
	Stats        []ReplacementStats
	Unfilled     []string // 文档中存在但未被替换的占位符
}

// ReplacementStats 单个占位符的替换统计
type ReplacementStats struct {
	Tag          string
	Occurrences  int
	InTables     int
	InParagraphs int
}

// BatchResult 批量处理结果
type BatchResult struct {
	ProcessedFiles int
	FailedFiles    int
	Replacements   int
	Errors         []error
}
