package processor

import (
	"context"
	"errors"

	"github.com/allanpk716/contract_filler/internal/domain"
	"github.com/allanpk716/contract_filler/pkg/docx"
)

// documentProcessor 文档处理器实现
type documentProcessor struct {
	tagExtractor   domain.TagExtractor
	templateFiller domain.TemplateFiller
}

// NewDocumentProcessor 创建新的文档处理器
func NewDocumentProcessor() domain.DocumentProcessor {
	return &documentProcessor{
		tagExtractor:   NewTagExtractor(),
		templateFiller: NewTemplateFiller(),
	}
}

// LoadTemplate 加载模板，失败时返回 InputError
func LoadTemplate(templatePath string) (*docx.Document, error) {
	if templatePath == "" {
		return nil, &domain.InputError{Err: errors.New("输入路径不能为空")}
	}

	doc, err := docx.Open(templatePath)
	if err != nil {
		return nil, &domain.InputError{Path: templatePath, Err: err}
	}
	return doc, nil
}

// FillFile 重新加载模板、填充并写入 outputPath
func FillFile(ctx context.Context, templatePath string, fields map[string]string, outputPath string) (*domain.FillResult, error) {
	doc, err := LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return NewTemplateFiller().Fill(ctx, doc, fields, outputPath)
}

// ExtractTags 加载模板并提取占位符
func (dp *documentProcessor) ExtractTags(templatePath string) ([]string, error) {
	doc, err := LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return dp.tagExtractor.ExtractTags(doc), nil
}

// FillTemplate 加载模板并填充，每次调用都使用新加载的文档
func (dp *documentProcessor) FillTemplate(ctx context.Context, templatePath string, fields map[string]string, outputPath string) (*domain.FillResult, error) {
	doc, err := LoadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return dp.templateFiller.Fill(ctx, doc, fields, outputPath)
}

// ValidateDocument 验证模板是否可用：包结构和正文都必须能解析
func (dp *documentProcessor) ValidateDocument(templatePath string) error {
	doc, err := LoadTemplate(templatePath)
	if err != nil {
		return err
	}
	doc.Close()

	if err := docx.ValidatePackage(templatePath); err != nil {
		return &domain.InputError{Path: templatePath, Err: err}
	}
	return nil
}
