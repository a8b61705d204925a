package api

import _ "embed"

// OpenAPISpec — описание HTTP API для Swagger UI.
//
//go:embed openapi.json
var OpenAPISpec []byte
