// Package docs embeds the OpenAPI description of the HTTP API.
package docs

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.json
var document []byte

// JSON returns the raw OpenAPI document.
func JSON() []byte {
	return document
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("docs: parse openapi: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("docs: invalid openapi: %w", err)
	}
	return doc, nil
}

// Operations lists "METHOD path" for every operation in the document.
func Operations(doc *openapi3.T) []string {
	var ops []string
	for _, path := range doc.Paths.InMatchingOrder() {
		for method := range doc.Paths.Find(path).Operations() {
			ops = append(ops, method+" "+path)
		}
	}
	return ops
}
