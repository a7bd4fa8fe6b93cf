// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/v1/auth/signup": {"post": {"tags": ["auth"], "summary": "Start signup", "responses": {"202": {"description": "Accepted"}, "409": {"description": "Conflict"}}}},
        "/v1/auth/signup/verify": {"post": {"tags": ["auth"], "summary": "Verify signup email", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/v1/auth/register": {"post": {"tags": ["auth"], "summary": "Register", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/v1/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/v1/account": {
            "get": {"tags": ["account"], "summary": "Current account", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["account"], "summary": "Update profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/account/twitter": {"delete": {"tags": ["twitter"], "summary": "Unlink Twitter", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/v1/twitter/connect": {"get": {"tags": ["twitter"], "summary": "Start linking a Twitter account", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/v1/twitter/callback": {"get": {"tags": ["twitter"], "summary": "OAuth callback", "responses": {"302": {"description": "Found"}}}},
        "/v1/posts": {
            "get": {"tags": ["posts"], "summary": "List posts", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["posts"], "summary": "Create a post", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/v1/posts/publish": {"post": {"tags": ["posts"], "summary": "Post now", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}, "502": {"description": "Bad Gateway"}}}},
        "/v1/posts/{id}": {
            "get": {"tags": ["posts"], "summary": "Get a post", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["posts"], "summary": "Update a post", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["posts"], "summary": "Delete a post", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}}
        },
        "/v1/posts/{id}/attempts": {"get": {"tags": ["posts"], "summary": "Dispatch attempts of a post", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/compose/generate": {"post": {"tags": ["compose"], "summary": "Generate a draft", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway"}}}},
        "/v1/compose/analyze": {"post": {"tags": ["compose"], "summary": "Analyze writing style", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/v1/cron/dispatch": {"get": {"tags": ["cron"], "summary": "Dispatch due posts", "parameters": [{"type": "string", "name": "token", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Composer API",
	Description:      "Post composition, scheduling and dispatch.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
