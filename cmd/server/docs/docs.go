// Package docs registers the OpenAPI document served on /swagger.
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
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Orders"],
                "summary": "List orders",
                "parameters": [
                    {"type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"type": "string", "description": "Filter by client", "name": "client_id", "in": "query"},
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Orders"],
                "summary": "Create order",
                "parameters": [
                    {"description": "Order", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/orders/{code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Orders"],
                "summary": "Get order",
                "parameters": [
                    {"type": "integer", "description": "Order code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/orders/{code}/status": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Orders"],
                "summary": "Set order status",
                "parameters": [
                    {"type": "integer", "description": "Order code", "name": "code", "in": "path", "required": true},
                    {"description": "Target status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SetStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/orders/{code}/confirm": {
            "post": {
                "description": "Generates a payment code and moves the order to awaiting_payment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Confirm order",
                "parameters": [
                    {"type": "integer", "description": "Order code", "name": "code", "in": "path", "required": true},
                    {"type": "boolean", "description": "Pay by credit card instead of PIX", "name": "use_card", "in": "query"},
                    {"description": "Payer details", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/model.PaymentDetails"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PaymentReceipt"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/webhooks/payment": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Payment webhook",
                "parameters": [
                    {"type": "boolean", "description": "Delivery is for a credit card payment", "name": "use_card", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.WebhookSettlementResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/kitchen/orders": {
            "get": {"produces": ["application/json"], "tags": ["Boards"], "summary": "Kitchen queue",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        },
        "/monitor/orders": {
            "get": {"produces": ["application/json"], "tags": ["Boards"], "summary": "Customer monitor",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}}
        }
    },
    "definitions": {
        "model.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "details": {}}
        },
        "model.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"type": "object"}},
                "combos": {"type": "array", "items": {"type": "object"}},
                "observations": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.SetStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string"}}
        },
        "model.PaymentDetails": {
            "type": "object",
            "properties": {"payer_name": {"type": "string"}, "payer_document": {"type": "string"}, "payer_email": {"type": "string"}}
        },
        "model.OrderResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "client_id": {"type": "string"},
                "status": {"type": "string"},
                "payment_code": {"type": "string"},
                "total": {"type": "integer"},
                "currency": {"type": "string"},
                "items": {"type": "array", "items": {"type": "object"}},
                "combos": {"type": "array", "items": {"type": "object"}}
            }
        },
        "model.PaymentReceipt": {
            "type": "object",
            "properties": {
                "order_code": {"type": "integer"},
                "status": {"type": "string"},
                "method": {"type": "string"},
                "payment_code": {"type": "string"},
                "qr_code": {"type": "string"},
                "client_secret": {"type": "string"},
                "amount": {"type": "integer"},
                "currency": {"type": "string"}
            }
        },
        "model.WebhookSettlementResponse": {
            "type": "object",
            "properties": {"order_code": {"type": "integer"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Bearer token authentication. Format: \"Bearer {token}\"", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "FastOrder API",
	Description:      "Restaurant order lifecycle and payment confirmation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
