// Package docs is generated by swag from the handler annotations.
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
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [{"description": "credentials", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/healthz": {
            "get": {"produces": ["application/json"], "tags": ["Health"], "summary": "Liveness", "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Dashboard",
                "parameters": [
                    {"type": "string", "description": "today | week | month | custom", "name": "date", "in": "query"},
                    {"type": "string", "description": "custom range start, YYYY-MM-DD", "name": "start", "in": "query"},
                    {"type": "string", "description": "custom range end, YYYY-MM-DD", "name": "end", "in": "query"},
                    {"type": "integer", "description": "project filter", "name": "project_id", "in": "query"},
                    {"type": "string", "description": "lead search term", "name": "q", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/leads": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Dashboard"], "summary": "Filtered leads", "responses": {"200": {"description": "OK"}}}
        },
        "/opportunities": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Dashboard"], "summary": "Filtered opportunities", "responses": {"200": {"description": "OK"}}}
        },
        "/site-visits": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Dashboard"], "summary": "Filtered site visits", "responses": {"200": {"description": "OK"}}}
        },
        "/projects": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Dashboard"], "summary": "Projects", "responses": {"200": {"description": "OK"}}}
        },
        "/refresh": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Admin"], "summary": "Refresh collections", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}}}
        },
        "/reports/leads.pdf": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/pdf"], "tags": ["Reports"], "summary": "Leads PDF", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/digest": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Admin"], "summary": "Send leads digest", "responses": {"202": {"description": "Accepted"}, "400": {"description": "Bad Request"}, "502": {"description": "Bad Gateway"}, "503": {"description": "Service Unavailable"}}}
        },
        "/install": {
            "get": {"produces": ["application/json"], "tags": ["Install"], "summary": "Install wizard state", "responses": {"200": {"description": "OK"}}}
        },
        "/install/steps/{step}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Install"],
                "summary": "Submit an install step",
                "parameters": [{"type": "string", "description": "step name or number", "name": "step", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/install/test-connection": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["Install"], "summary": "Test database connection", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/install/back": {
            "post": {"produces": ["application/json"], "tags": ["Install"], "summary": "Previous install step", "responses": {"200": {"description": "OK"}}}
        },
        "/ui/panels": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["UI"], "summary": "Panel visibility", "responses": {"200": {"description": "OK"}}}
        },
        "/ui/panels/close-all": {
            "post": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["UI"], "summary": "Close every panel", "responses": {"200": {"description": "OK"}}}
        },
        "/ui/panels/{name}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["UI"], "summary": "Panel state", "parameters": [{"type": "string", "description": "panel name", "name": "name", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
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
	Title:            "Realty CRM API",
	Description:      "Filtered leads, opportunities and site visits for the CRM dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
