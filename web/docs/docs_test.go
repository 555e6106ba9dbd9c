package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidatesDocument(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.NotNil(t, doc.Paths.Find("/auth/login"))
	assert.NotNil(t, doc.Components.SecuritySchemes["bearerAuth"])

	ops := Operations(doc)
	assert.Contains(t, ops, "POST /auth/login")
	assert.Contains(t, ops, "DELETE /user/reviews/{review_id}")
	assert.Contains(t, ops, "GET /admin/activity")
}

func TestPublicOperationsDropSecurity(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{"/auth/login", "/auth/register"} {
		op := doc.Paths.Find(path).Post
		require.NotNil(t, op, path)
		require.NotNil(t, op.Security, path)
		assert.Empty(t, *op.Security, path)
	}
}
