package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ndocx "github.com/nguyenthenguyen/docx"
)

// Document 已加载的 DOCX 模板
// 段落和表格按文档顺序排列，加载后只读
type Document struct {
	path     string
	reader   *ndocx.ReplaceDocx
	editable *ndocx.Docx
	content  string

	Paragraphs []*Paragraph
	Tables     []*Table

	// all 文档顺序下的全部段落（正文、表格单元格、嵌套表格），不含文本框
	all []*Paragraph
}

// Table 表格
type Table struct {
	Rows []*Row
}

// Row 表格行
type Row struct {
	Cells []*Cell
}

// Cell 表格单元格
type Cell struct {
	Paragraphs []*Paragraph
	Tables     []*Table
}

// Paragraph 段落
type Paragraph struct {
	Runs    []*Run
	InTable bool
}

// Text 段落文本，等于所有 run 文本的拼接
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text())
	}
	return b.String()
}

// Run 带格式的文本片段 (w:r)
type Run struct {
	segments []*segment
}

// Text run 文本，w:tab 记为 \t，w:br 与 w:cr 记为 \n
func (r *Run) Text() string {
	var b strings.Builder
	for _, s := range r.segments {
		b.WriteString(s.text)
	}
	return b.String()
}

// segment run 内的一个文本单元：可编辑的 w:t，或固定的 w:tab / w:br
type segment struct {
	text  string
	fixed bool

	// 元素在 document.xml 中的位置
	elemStart int
	elemEnd   int
	// 元素名（含前缀），如 w:t
	name string
	// 自闭合的 <w:t/> 不可写入
	empty bool
}

// Open 打开 DOCX 文档并解析正文结构
func Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s 是目录", path)
	}

	reader, err := ndocx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开DOCX文件失败: %w", err)
	}

	editable := reader.Editable()
	content := editable.GetContent()

	doc := &Document{
		path:     path,
		reader:   reader,
		editable: editable,
		content:  content,
	}

	if err := parseBody(doc); err != nil {
		reader.Close()
		return nil, fmt.Errorf("解析document.xml失败: %w", err)
	}

	return doc, nil
}

// Path 模板文件路径
func (d *Document) Path() string {
	return d.path
}

// Content 原始 document.xml 内容
func (d *Document) Content() string {
	return d.content
}

// AllParagraphs 返回文档顺序下的全部段落，包含表格单元格内的段落
func (d *Document) AllParagraphs() []*Paragraph {
	return d.all
}

// SaveAs 应用编辑并写入新文件
// 先写入同目录下的临时文件再重命名，允许覆盖已存在的文件（包括模板自身）
// 写入后恢复内存中的原始内容，同一个 Document 可以反复填充
func (d *Document) SaveAs(outputPath string, edits []Edit) error {
	if d.editable == nil {
		return fmt.Errorf("文档未打开")
	}

	dir := filepath.Dir(outputPath)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("输出目录不可用: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("输出目录不可用: %s 不是目录", dir)
	}

	tmp, err := os.CreateTemp(dir, ".contract-*.docx.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("设置文件权限失败: %w", err)
	}

	d.editable.SetContent(ApplyEdits(d.content, edits))
	defer d.editable.SetContent(d.content)

	if err := d.editable.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("写入文档失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("保存文档失败: %w", err)
	}

	return nil
}

// Close 关闭文档
func (d *Document) Close() error {
	if d.reader != nil {
		err := d.reader.Close()
		d.reader = nil
		d.editable = nil
		return err
	}
	return nil
}
