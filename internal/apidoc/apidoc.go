// Package apidoc serves the embedded OpenAPI description of the HTTP API.
package apidoc

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var specYAML []byte

// Load parses and validates the embedded document
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// Handler serves doc as JSON
func Handler(doc *openapi3.T) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	}
}
