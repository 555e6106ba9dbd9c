package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeq(t *testing.T) {
	for _, n := range []int{0, 1, 32} {
		s := Seq(n)
		assert.Len(t, s, n)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(alphanumeric, r), "unexpected rune %q", r)
		}
	}
}

func TestSecretIsRandom(t *testing.T) {
	a, b := Secret(), Secret()
	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)
}
