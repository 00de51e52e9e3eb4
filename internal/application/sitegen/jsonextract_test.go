package sitegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"whitespace padded", "  \n{\"a\":1}\t ", `{"a":1}`, true},
		{"markdown fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"leading prose", `Sure, here it is: {"a":1}`, `{"a":1}`, true},
		{"trailing prose", `{"a":1} Let me know if you need more.`, `{"a":1}`, true},
		{"nested braces", `text {"a":{"b":2}} text`, `{"a":{"b":2}}`, true},
		{"empty object", `{}`, `{}`, true},
		{"empty input", "", "", false},
		{"whitespace only", "   \n\t", "", false},
		{"no object", "just plain text", "", false},
		{"only open brace", "{incomplete", "", false},
		{"reversed braces", "} {", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONObjectIdempotent(t *testing.T) {
	first, ok := extractJSONObject(`noise {"a":1} noise`)
	assert.True(t, ok)

	second, ok := extractJSONObject(first)
	assert.True(t, ok)
	assert.Equal(t, first, second)
}
