package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/allanpk716/contract_filler/internal/matcher"
)

// Field 表示一个字段值配置项
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// FieldsFile 表示字段值文件的结构
type FieldsFile struct {
	ProjectName string  `json:"project_name" yaml:"project_name"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// ConfigManager 字段值文件管理接口
type ConfigManager interface {
	LoadFields(filePath string) (*FieldsFile, error)
	ValidateFields(fields *FieldsFile) error
	GetFieldMap(fields *FieldsFile) map[string]string
}

// configManager 字段值文件管理器实现
type configManager struct{}

// NewConfigManager 创建新的字段值文件管理器
func NewConfigManager() ConfigManager {
	return &configManager{}
}

// LoadFields 从 JSON 或 YAML 文件加载字段值，格式由扩展名决定
func (cm *configManager) LoadFields(filePath string) (*FieldsFile, error) {
	if filePath == "" {
		return nil, fmt.Errorf("字段文件路径不能为空")
	}

	// 检查文件是否存在
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("字段文件不存在: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取字段文件失败: %w", err)
	}

	var fields FieldsFile
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".json":
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("解析字段文件失败: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("解析字段文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("字段文件必须是 JSON 或 YAML 格式，当前文件: %s", ext)
	}

	if err := cm.ValidateFields(&fields); err != nil {
		return nil, fmt.Errorf("字段文件验证失败: %w", err)
	}

	return &fields, nil
}

// ValidateFields 验证字段值文件：key 不能为空且不能重复
// 值是否为空由前端决定，这里不检查
func (cm *configManager) ValidateFields(fields *FieldsFile) error {
	if fields == nil {
		return fmt.Errorf("字段文件不能为空")
	}

	keySet := make(map[string]bool)
	for i, field := range fields.Fields {
		key := NormalizeKey(field.Key)
		if key == "" {
			return fmt.Errorf("第 %d 个字段的 key 不能为空", i+1)
		}
		if keySet[key] {
			return fmt.Errorf("字段重复: %s", key)
		}
		keySet[key] = true
	}

	return nil
}

// GetFieldMap 将字段列表转换为映射表，key 为不带花括号的占位符名称
func (cm *configManager) GetFieldMap(fields *FieldsFile) map[string]string {
	if fields == nil {
		return nil
	}

	fieldMap := make(map[string]string, len(fields.Fields))
	for _, field := range fields.Fields {
		fieldMap[NormalizeKey(field.Key)] = field.Value
	}

	return fieldMap
}

// NormalizeKey 去掉首尾空白；{CLIENT} 与 CLIENT 视为同一个 key
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	return matcher.ExtractTagName(key)
}
