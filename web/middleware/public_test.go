package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicPathsMatch(t *testing.T) {
	public := NewPublicPaths([]string{"/auth/login", " docs ", "/redoc/", ""})

	tests := []struct {
		path string
		want bool
	}{
		{"/auth/login", true},
		{"/auth/login/", true},
		{"/auth/login/extra", true},
		{"/auth/loginx", false},
		{"/auth/logout", false},
		{"/auth/login/../me", false},
		{"/docs", true},
		{"/docs/index.html", true},
		{"/docsx", false},
		{"/redoc", true},
		{"/", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, public.Match(tt.path), tt.path)
	}
}
