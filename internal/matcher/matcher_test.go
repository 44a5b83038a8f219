package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagMatcher(t *testing.T) {
	matcher := NewTagMatcher()
	if matcher == nil {
		t.Fatal("Expected non-nil matcher")
	}
}

func TestTagMatcher_FindTags(t *testing.T) {
	matcher := NewTagMatcher()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "two tags",
			text:     "Agreement between {CLIENT} and {COMPANY}",
			expected: []string{"CLIENT", "COMPANY"},
		},
		{
			name:     "duplicates kept in order",
			text:     "{B} {A} {B}",
			expected: []string{"B", "A", "B"},
		},
		{
			name:     "no tags",
			text:     "plain text",
			expected: nil,
		},
		{
			name:     "non greedy",
			text:     "{a{b} c}",
			expected: []string{"a{b"},
		},
		{
			name:     "unclosed brace",
			text:     "{open and {closed}",
			expected: []string{"open and {closed"},
		},
		{
			name:     "empty name skipped",
			text:     "{} {X}",
			expected: []string{"X"},
		},
		{
			name:     "spaces and unicode",
			text:     "Договор между {ИМЯ КЛИЕНТА} и {компания}",
			expected: []string{"ИМЯ КЛИЕНТА", "компания"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matcher.FindTags(tt.text))
		})
	}
}

func TestTagMatcher_FindMatches(t *testing.T) {
	fields := map[string]string{
		"NAME":    "John Doe",
		"AGE":     "30",
		"COMPANY": "Tech Corp",
	}

	matcher := NewTagMatcher()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{
			name:     "single match",
			text:     "Hello {NAME}, welcome!",
			expected: 1,
		},
		{
			name:     "multiple matches",
			text:     "{NAME} is {AGE} years old and works at {COMPANY}",
			expected: 3,
		},
		{
			name:     "no matches",
			text:     "This is a normal text without placeholders",
			expected: 0,
		},
		{
			name:     "duplicate matches",
			text:     "{NAME} and {NAME} again",
			expected: 2,
		},
		{
			name:     "partial matches",
			text:     "{NAME and NAME} are not valid",
			expected: 0,
		},
		{
			name:     "unmapped tag ignored",
			text:     "{NAME} {CITY}",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := matcher.FindMatches(tt.text, fields)
			if len(matches) != tt.expected {
				t.Errorf("FindMatches() = %v matches, expected %v", len(matches), tt.expected)
			}
		})
	}
}

func TestTagMatcher_FindMatchesPositions(t *testing.T) {
	matcher := NewTagMatcher()
	matches := matcher.FindMatches("x{A}y{B}", map[string]string{"A": "1", "B": "2"})

	if assert.Len(t, matches, 2) {
		assert.Equal(t, 1, matches[0].StartPos)
		assert.Equal(t, 4, matches[0].EndPos)
		assert.Equal(t, "A", matches[0].Tag)
		assert.Equal(t, 5, matches[1].StartPos)
		assert.Equal(t, 8, matches[1].EndPos)
	}
}

func TestTagMatcher_FindMatches_NotRecursive(t *testing.T) {
	fields := map[string]string{
		"A": "{B}",
		"B": "b",
	}
	matches := NewTagMatcher().FindMatches("{A} {B}", fields)
	require.Len(t, matches, 2)
	assert.Equal(t, "{B}", matches[0].Replacement)
	assert.Equal(t, "B", matches[1].Tag)
	assert.Equal(t, 4, matches[1].StartPos)
}

func TestTagMatcher_FindMatches_LongestTagWins(t *testing.T) {
	fields := map[string]string{
		"a{b": "long",
		"b":   "short",
	}
	matches := NewTagMatcher().FindMatches("{a{b}", fields)
	require.Len(t, matches, 1)
	assert.Equal(t, "a{b", matches[0].Tag)
	assert.Equal(t, 5, matches[0].EndPos)
}

func TestTagFormat(t *testing.T) {
	tests := []struct {
		input string
		valid bool
		name  string
	}{
		{"{NAME}", true, "NAME"},
		{"NAME", false, "NAME"},
		{"{}", false, "{}"},
		{"{A{B}", false, "{A{B}"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateTagFormat(tt.input))
			assert.Equal(t, tt.name, ExtractTagName(tt.input))
		})
	}

	assert.Equal(t, "{CLIENT}", FormatTag("CLIENT"))
}
