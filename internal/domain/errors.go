package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput        = errors.New("模板无法加载")
	ErrStorage      = errors.New("输出文件无法写入")
	ErrFieldMissing = errors.New("必填字段为空")
)

// InputError 模板缺失、不可读或不是有效的 DOCX 文档
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("加载模板 %s 失败: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

func (e *InputError) Is(target error) bool { return target == ErrInput }

// StorageError 输出路径不可写或目录不存在
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("写入输出文件 %s 失败: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// FieldMissingError 字段值为空或缺失，由前端校验产生，核心不强制
type FieldMissingError struct {
	Fields []string
}

func (e *FieldMissingError) Error() string {
	quoted := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		quoted[i] = "'" + f + "'"
	}
	return fmt.Sprintf("字段 %s 为空", strings.Join(quoted, ", "))
}

func (e *FieldMissingError) Is(target error) bool { return target == ErrFieldMissing }
