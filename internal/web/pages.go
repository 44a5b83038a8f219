package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var pagesFS embed.FS

// indexPage 模板列表页数据
type indexPage struct {
	Title     string
	Error     string
	Templates []string
}

// fillPage 字段填写页数据
type fillPage struct {
	Title    string
	Error    string
	Action   string
	Fields   []fieldView
	Filename string
}

type fieldView struct {
	Name    string
	Input   string
	Value   string
	Missing bool
}

func parsePages() (*template.Template, error) {
	return template.ParseFS(pagesFS, "templates/*.html")
}

func renderPage(w io.Writer, pages *template.Template, name string, data any) error {
	return pages.ExecuteTemplate(w, name, data)
}

// inputName 表单中占位符对应的字段名，加前缀避免与 filename 冲突
func inputName(tag string) string {
	return "field." + tag
}
