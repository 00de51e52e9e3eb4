package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_EXPAND_SET", "from-env")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "key: ${TEST_EXPAND_SET}", "key: from-env"},
		{"set variable ignores default", "key: ${TEST_EXPAND_SET:fallback}", "key: from-env"},
		{"unset with default", "key: ${TEST_EXPAND_UNSET:fallback}", "key: fallback"},
		{"unset with empty default", "key: ${TEST_EXPAND_UNSET:}", "key: "},
		{"unset without default kept verbatim", "key: ${TEST_EXPAND_UNSET}", "key: ${TEST_EXPAND_UNSET}"},
		{"multiple placeholders", "${TEST_EXPAND_SET}/${TEST_EXPAND_UNSET:x}", "from-env/x"},
		{"no placeholder", "plain: value", "plain: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}
