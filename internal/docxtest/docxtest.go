// Package docxtest 构造测试用的 DOCX 文件
package docxtest

import (
	"archive/zip"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`

// Document 用正文 XML 生成完整的 document.xml
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`
}

// Paragraph 生成只有一个 run 的段落
func Paragraph(text string) string {
	return Runs(text)
}

// Runs 生成包含多个 run 的段落，每个参数一个 run
func Runs(texts ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for i, text := range texts {
		// 奇数 run 加粗，便于检查格式是否保留
		if i%2 == 1 {
			b.WriteString("<w:r><w:rPr><w:b/></w:rPr>")
		} else {
			b.WriteString("<w:r>")
		}
		fmt.Fprintf(&b, `<w:t xml:space="preserve">%s</w:t></w:r>`, html.EscapeString(text))
	}
	b.WriteString("</w:p>")
	return b.String()
}

// Table 生成表格，每个单元格一个段落
func Table(rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl><w:tblPr><w:tblW w:w=\"0\" w:type=\"auto\"/></w:tblPr>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString("<w:tc><w:tcPr><w:tcW w:w=\"2000\" w:type=\"dxa\"/></w:tcPr>")
			b.WriteString(Paragraph(cell))
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// Write 在 path 写入一个正文为 body 的 DOCX 文件
func Write(t testing.TB, path, body string) string {
	t.Helper()
	if err := WriteDocumentXML(path, Document(body)); err != nil {
		t.Fatalf("创建测试文档失败: %v", err)
	}
	return path
}

// Create 在临时目录创建 DOCX 文件并返回路径
func Create(t testing.TB, name, body string) string {
	t.Helper()
	return Write(t, filepath.Join(t.TempDir(), name), body)
}

// WriteDocumentXML 写入一个包含给定 document.xml 的最小 DOCX 包
func WriteDocumentXML(path, documentXML string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	zipWriter := zip.NewWriter(file)

	files := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", packageRels},
		{"word/_rels/document.xml.rels", documentRels},
		{"word/document.xml", documentXML},
	}
	for _, f := range files {
		writer, err := zipWriter.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(f.content)); err != nil {
			return err
		}
	}

	return zipWriter.Close()
}

// ReadDocumentXML 读取 DOCX 文件中的 word/document.xml
func ReadDocumentXML(t testing.TB, path string) string {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("打开DOCX文件失败: %v", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("打开document.xml失败: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("读取document.xml失败: %v", err)
		}
		return string(data)
	}

	t.Fatalf("未找到document.xml文件")
	return ""
}
