package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShorten(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hell…"},
		{"日本語のテキスト", 4, "日本語…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Shorten(tt.in, tt.n), tt.in)
	}
}

func TestOneline(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a b c", Oneline("  a\n b\t\tc \n", 10))
	assert.Equal(t, "abcd…", Oneline("abcdefgh", 5))
}

func TestOrDefault(t *testing.T) {
	t.Parallel()
	s := "value"
	blank := "  "
	assert.Equal(t, "value", OrDefault(&s, "-"))
	assert.Equal(t, "-", OrDefault(&blank, "-"))
	assert.Equal(t, "-", OrDefault(nil, "-"))
}

func TestPaddedLine(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "path:           /tmp", PaddedLine("path:", "/tmp"))
}
