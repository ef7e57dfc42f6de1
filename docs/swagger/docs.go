// Package swagger registers the OpenAPI document served under /swagger.
package swagger

import (
	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/sign-up": {"post": {"tags": ["auth"], "summary": "Sign up", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/auth/sign-in": {"post": {"tags": ["auth"], "summary": "Sign in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/auth/select-role": {"post": {"tags": ["auth"], "summary": "Select role", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/refresh-tokens": {"post": {"tags": ["auth"], "summary": "Refresh tokens", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/sign-out": {"post": {"tags": ["auth"], "summary": "Sign out", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/users": {"get": {"tags": ["users"], "summary": "List users", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/me": {"get": {"tags": ["users"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/me/avatar": {"post": {"tags": ["users"], "summary": "Upload avatar", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/roles": {
            "get": {"tags": ["roles"], "summary": "List roles", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["roles"], "summary": "Create role", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/roles/assign": {"post": {"tags": ["roles"], "summary": "Assign role to user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/permissions": {
            "get": {"tags": ["permissions"], "summary": "List permissions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["permissions"], "summary": "Create resource permission", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/permissions/assign": {"post": {"tags": ["permissions"], "summary": "Assign permission to role", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/menus": {"post": {"tags": ["menus"], "summary": "Create menu", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/menus/my-menus": {"get": {"tags": ["menus"], "summary": "My menus", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "IAM API",
	Description:      "Multi-role authentication and authorization service.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
