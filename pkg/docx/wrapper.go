package docx

import (
	"fmt"

	"github.com/gomutex/godocx"
	godocxdoc "github.com/gomutex/godocx/docx"
)

// DocxWrapper 包装 gomutex/godocx 库，用于独立校验模板包结构
type DocxWrapper struct {
	doc *godocxdoc.RootDoc
}

// OpenDocument 打开DOCX文档
func (dw *DocxWrapper) OpenDocument(filePath string) error {
	doc, err := godocx.OpenDocument(filePath)
	if err != nil {
		return fmt.Errorf("打开文档失败: %w", err)
	}

	dw.doc = doc
	return nil
}

// ValidatePackage 使用 godocx 校验 DOCX 包结构
// 与 Open 的解析相互独立，两者都通过才认为模板可用
func ValidatePackage(filePath string) error {
	wrapper := &DocxWrapper{}
	return wrapper.OpenDocument(filePath)
}
