package form

import (
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/allanpk716/contract_filler/internal/domain"
)

// Collect 校验用户输入：每个占位符都必须有非空值（首尾空白会被去掉）
// 缺失的占位符按 tags 的顺序列在 FieldMissingError 中
func Collect(tags []string, values map[string]string) (map[string]string, error) {
	fields := make(map[string]string, len(tags))
	var missing []string

	for _, tag := range tags {
		value := strings.TrimSpace(values[tag])
		if value == "" {
			missing = append(missing, tag)
			continue
		}
		fields[tag] = value
	}

	if len(missing) > 0 {
		return nil, &domain.FieldMissingError{Fields: missing}
	}
	return fields, nil
}

// Merge 合并多个来源的字段值，后面的覆盖前面的
func Merge(sources ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			merged[k] = v
		}
	}
	return merged
}

// OutputFileName 规范化用户输入的输出文件名
// 去掉首尾空白和路径分隔符，做 NFC 归一化，缺少扩展名时补上 .docx
func OutputFileName(name string) (string, error) {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return -1
		}
		return r
	}, norm.NFC.String(name))
	name = strings.TrimSpace(name)

	base := name
	if strings.EqualFold(filepath.Ext(name), ".docx") {
		base = name[:len(name)-len(".docx")]
	} else {
		name += ".docx"
	}
	if strings.Trim(strings.TrimSpace(base), ".") == "" {
		return "", &domain.InputError{Err: errors.New("文件名不能为空")}
	}
	return name, nil
}
