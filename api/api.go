// Package api embeds the OpenAPI document served at /swagger and used to
// validate incoming requests.
package api

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var openAPIDocument []byte

// OpenAPIDocument returns the raw OpenAPI 3 document.
func OpenAPIDocument() []byte {
	return openAPIDocument
}

type swaggerDoc struct{}

// ReadDoc serves the embedded document to swag.
func (swaggerDoc) ReadDoc() string {
	return string(openAPIDocument)
}

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}
