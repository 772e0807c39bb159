// Package docs is generated by swaggo/swag from the handler annotations.
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
    "paths": {
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["system"], "summary": "Health check",
                "responses": {"200": {"description": "OK"}}}
        },
        "/auth/sign-up": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"],
                "summary": "Register an operator",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/auth/sign-in": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["auth"],
                "summary": "Sign in and obtain a bearer token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/v1/subjects": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Provision subject",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/v1/subjects/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Subject state",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/subjects/{id}/credentials/check": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Check a keypad code",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/v1/subjects/{id}/power/on": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Power on",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/subjects/{id}/power/off": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Power off",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/subjects/{id}/arm": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Arm",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "powered off"}}}
        },
        "/api/v1/subjects/{id}/disarm": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Disarm",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "powered off"}}}
        },
        "/api/v1/subjects/{id}/panic": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Raise panic",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/subjects/{id}/password": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["subjects"], "summary": "Change master code",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/logs": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["logs"], "summary": "List logs",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "subject", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}}}
        },
        "/api/v1/panels": {
            "get": {"tags": ["panels"], "summary": "List panels", "responses": {"200": {"description": "count, panels"}}}
        },
        "/api/v1/panels/{id}": {
            "get": {"tags": ["panels"], "summary": "Panel state",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/panels/{id}/keys": {
            "post": {"tags": ["panels"], "summary": "Press keys",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/panels/{id}/submit": {
            "post": {"tags": ["panels"], "summary": "Submit pending code",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/panels/{id}/unlock": {
            "post": {"tags": ["panels"], "summary": "Unlock panel",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "not locked"}}}
        },
        "/ws": {
            "get": {"tags": ["panels"], "summary": "Panel feedback stream",
                "parameters": [{"type": "string", "name": "panel", "in": "query", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Control Panel API",
	Description:      "Security service and control panel keypad API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
