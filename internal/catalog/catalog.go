package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/allanpk716/contract_filler/internal/domain"
)

// IsTemplateName 判断文件名是否为可用模板：.docx 扩展名（不区分大小写）且不是 Word 锁文件
func IsTemplateName(name string) bool {
	if strings.HasPrefix(name, "~$") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".docx")
}

// List 列出目录下（不递归）的模板文件名，按名称排序
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.InputError{Path: dir, Err: fmt.Errorf("读取模板目录失败: %w", err)}
	}

	templates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsTemplateName(entry.Name()) {
			continue
		}
		templates = append(templates, entry.Name())
	}
	sort.Strings(templates)
	return templates, nil
}

// Resolve 将模板名称拼接到模板目录，拒绝包含路径分隔符或 .. 的名称
func Resolve(dir, name string) (string, error) {
	if name == "" {
		return "", &domain.InputError{Err: errors.New("模板名称不能为空")}
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", &domain.InputError{Path: name, Err: errors.New("模板名称非法")}
	}
	if !IsTemplateName(name) {
		return "", &domain.InputError{Path: name, Err: errors.New("不是 DOCX 模板")}
	}
	return filepath.Join(dir, name), nil
}

// FindDocxFiles 递归查找目录中的所有 DOCX 文件，排除临时文件
func FindDocxFiles(dir string) ([]string, error) {
	var docxFiles []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsTemplateName(d.Name()) {
			docxFiles = append(docxFiles, path)
		}
		return nil
	})

	return docxFiles, err
}
