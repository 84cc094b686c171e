package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	in := "  he\x00llo\nwo\x7frld\t!  "
	assert.Equal(t, "hello\nworld\t!", SanitizeText(in))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Python", "SQL", "Docker"}, SplitList("Python, SQL,,\n- Docker"))
	assert.Empty(t, SplitList("  ,  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
