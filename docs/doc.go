// Package docs holds the generated OpenAPI document served at /swagger.
//
// Regenerate after changing handler annotations.
package docs

//go:generate swag init -g ../cmd/server/main.go -o . --parseInternal --v3.1
