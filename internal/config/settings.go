package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile 默认的应用配置文件名
const DefaultSettingsFile = "contract-filler.yaml"

// Settings 应用配置
type Settings struct {
	TemplatesDir   string      `yaml:"templates_dir"`
	OutputDir      string      `yaml:"output_dir"`
	Listen         string      `yaml:"listen"`
	HistoryDB      string      `yaml:"history_db"`
	WatchTemplates bool        `yaml:"watch_templates"`
	Log            LogSettings `yaml:"log"`
}

// LogSettings 日志配置
type LogSettings struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultSettings 返回默认配置
func DefaultSettings() *Settings {
	return &Settings{
		TemplatesDir: "contracts_templates",
		OutputDir:    "output",
		Listen:       "127.0.0.1:8080",
		Log: LogSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadSettings 加载 YAML 配置，未设置的项使用默认值
// path 为默认文件名且文件不存在时直接返回默认配置
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && filepath.Base(path) == DefaultSettingsFile {
			return settings, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return settings, nil
}

// Validate 验证配置的有效性
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.TemplatesDir) == "" {
		return fmt.Errorf("templates_dir 不能为空")
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		return fmt.Errorf("output_dir 不能为空")
	}

	switch strings.ToLower(s.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("不支持的日志级别: %s", s.Log.Level)
	}

	switch strings.ToLower(s.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("不支持的日志格式: %s", s.Log.Format)
	}

	return nil
}

// SaveSettings 保存配置到文件
func SaveSettings(settings *Settings, filePath string) error {
	if settings == nil {
		return fmt.Errorf("配置不能为空")
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}
