// Package docs holds the OpenAPI description served at /swagger.
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
        "/extract": {
            "post": {
                "description": "Runs the extractor over a {statusCode, body} envelope",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Extract messages from an envelope",
                "parameters": [
                    {
                        "description": "Upstream envelope",
                        "name": "envelope",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.RawEnvelope"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ParsedResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/messages": {
            "get": {
                "description": "Returns the cached feed for a time frame, refreshing it on first use",
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "List messages",
                "parameters": [
                    {"type": "string", "default": "all", "description": "hour, 6hours, day, week or all", "name": "timeframe", "in": "query"},
                    {"type": "string", "description": "CEL filter expression", "name": "filter", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MessagesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/messages/refresh": {
            "post": {
                "description": "Fetches the upstream endpoint for the time frame and replaces the cached feed",
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Refresh a time frame",
                "parameters": [
                    {"type": "string", "default": "all", "description": "hour, 6hours, day, week or all", "name": "timeframe", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ParsedResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/parse": {
            "post": {
                "description": "Parses a pasted document, either an envelope or a list of message objects",
                "consumes": ["text/plain"],
                "produces": ["application/json"],
                "tags": ["extraction"],
                "summary": "Parse a document",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ParsedResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Last refresh status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/feed.Status"}}
                }
            }
        },
        "/stored": {
            "get": {
                "description": "Returns the storage snapshot narrowed to the time frame",
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "List stored messages",
                "parameters": [
                    {"type": "string", "default": "all", "description": "hour, 6hours, day, week or all", "name": "timeframe", "in": "query"},
                    {"type": "string", "description": "CEL filter expression", "name": "filter", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.MessagesResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.MessagesResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/models.MessageRecord"}},
                "timeframe": {"type": "string"}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "object", "additionalProperties": true},
                "error": {"type": "string"},
                "error_code": {"type": "string"}
            }
        },
        "feed.Status": {
            "type": "object",
            "properties": {
                "frames": {"type": "array", "items": {"type": "string"}},
                "hasNewMessages": {"type": "boolean"},
                "lastError": {"type": "string"},
                "message": {"type": "string"},
                "messageCount": {"type": "integer"},
                "refreshedAt": {"type": "string"},
                "statusCode": {"type": "integer"},
                "timeframe": {"type": "string"}
            }
        },
        "models.MessageRecord": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "id": {"type": "string"},
                "message": {"type": "string"},
                "metadata": {"type": "object", "additionalProperties": true},
                "severity": {"type": "string", "enum": ["info", "warning", "error", "success"]},
                "timestamp": {"type": "string"}
            }
        },
        "models.ParsedResult": {
            "type": "object",
            "properties": {
                "hasNewMessages": {"type": "boolean"},
                "message": {"type": "string"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/models.MessageRecord"}}
            }
        },
        "models.RawEnvelope": {
            "type": "object",
            "properties": {
                "body": {},
                "statusCode": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "promofeed API",
	Description:      "Extracted promotion messages by time frame.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
