package matcher

import (
	"regexp"
	"sort"
	"strings"

	"github.com/allanpk716/contract_filler/internal/domain"
)

// tagPattern 非贪婪匹配：从 { 开始到其后第一个 } 结束
var tagPattern = regexp.MustCompile(`\{(.*?)\}`)

// tagMatcher 占位符匹配器实现
type tagMatcher struct{}

// NewTagMatcher 创建新的占位符匹配器
func NewTagMatcher() domain.TagMatcher {
	return &tagMatcher{}
}

// FindTags 按出现顺序返回文本中的占位符名称，可能重复，空名称 {} 会被忽略
func (tm *tagMatcher) FindTags(content string) []string {
	var tags []string
	for _, sub := range tagPattern.FindAllStringSubmatch(content, -1) {
		if sub[1] == "" {
			continue
		}
		tags = append(tags, sub[1])
	}
	return tags
}

// FindMatches 从左到右单遍扫描，查找映射中存在的 {tag}
// 同一位置有多个候选时取最长的占位符，匹配之间不重叠，结果按位置升序
func (tm *tagMatcher) FindMatches(content string, fields map[string]string) []domain.Match {
	if len(fields) == 0 || !strings.Contains(content, "{") {
		return nil
	}

	keys := sortedKeys(fields)

	var matches []domain.Match
	for i := 0; i < len(content); {
		if content[i] != '{' {
			i++
			continue
		}
		matched := false
		for _, key := range keys {
			placeholder := FormatTag(key)
			if strings.HasPrefix(content[i:], placeholder) {
				matches = append(matches, domain.Match{
					Tag:         key,
					Replacement: fields[key],
					StartPos:    i,
					EndPos:      i + len(placeholder),
				})
				i += len(placeholder)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}

	return matches
}

// ValidateTagFormat 验证占位符格式是否为 {name}
func ValidateTagFormat(tag string) bool {
	if len(tag) < 3 {
		return false
	}
	if !strings.HasPrefix(tag, "{") || !strings.HasSuffix(tag, "}") {
		return false
	}
	return !strings.ContainsAny(tag[1:len(tag)-1], "{}")
}

// ExtractTagName 从 {name} 格式中提取名称
func ExtractTagName(tag string) string {
	if !ValidateTagFormat(tag) {
		return tag
	}
	return tag[1 : len(tag)-1]
}

// FormatTag 将名称格式化为 {name} 格式
func FormatTag(name string) string {
	return "{" + name + "}"
}

// sortedKeys 按长度降序、字典序升序排列，保证结果确定
func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
