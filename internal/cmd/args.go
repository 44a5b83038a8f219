package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/allanpk716/contract_filler/internal/config"
	"github.com/allanpk716/contract_filler/internal/form"
)

const (
	AppName    = "contract-filler"
	AppVersion = "1.0.0"
)

// GenerateOutputFileName 生成输出文件名
func GenerateOutputFileName(inputFile string) string {
	ext := filepath.Ext(inputFile)
	base := strings.TrimSuffix(inputFile, ext)
	return base + "_filled" + ext
}

// ParseAssignments 解析 --set KEY=VALUE 参数，KEY 可以带花括号
func ParseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("参数格式错误，应为 KEY=VALUE: %s", pair)
		}
		key = config.NormalizeKey(key)
		if key == "" {
			return nil, fmt.Errorf("参数 key 不能为空: %s", pair)
		}
		values[key] = value
	}
	return values, nil
}

// LoadFieldValues 合并字段文件和命令行参数，命令行优先
func LoadFieldValues(fieldsFile string, assignments []string) (map[string]string, error) {
	var fromFile map[string]string
	if fieldsFile != "" {
		configManager := config.NewConfigManager()
		fields, err := configManager.LoadFields(fieldsFile)
		if err != nil {
			return nil, fmt.Errorf("加载字段文件失败: %w", err)
		}
		fromFile = configManager.GetFieldMap(fields)
	}

	fromFlags, err := ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}

	return form.Merge(fromFile, fromFlags), nil
}
