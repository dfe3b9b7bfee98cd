// Package api contains the OpenAPI description served at /docs.
package api

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
        "/healthz": {"get": {"tags": ["General"], "summary": "Get health", "responses": {"204": {"description": "No Content"}}}},
        "/version": {"get": {"tags": ["General"], "summary": "API version", "responses": {"200": {"description": "OK"}}}},
        "/v1": {"get": {"tags": ["v1"], "summary": "v1 API", "responses": {"200": {"description": "OK"}}}},
        "/v1/generate": {"post": {"tags": ["Forecast"], "summary": "Generate transactions", "parameters": [
            {"type": "integer", "description": "Number of months to generate", "name": "horizon", "in": "query"},
            {"type": "string", "description": "First generated day in YYYY-MM-DD format, defaults to today", "name": "asOf", "in": "query"}
        ], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/v1/projection": {"get": {"tags": ["Forecast"], "summary": "Get projection", "responses": {"200": {"description": "OK"}}}},
        "/v1/projection/minimum": {"get": {"tags": ["Forecast"], "summary": "Get minimum balance", "parameters": [
            {"type": "string", "description": "Pay type code of the account, defaults to the primary account", "name": "account", "in": "query"},
            {"type": "integer", "description": "Number of days in the window", "name": "days", "in": "query"},
            {"type": "string", "description": "First day of the window in YYYY-MM-DD format, defaults to today", "name": "from", "in": "query"}
        ], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/v1/recalculate": {"get": {"tags": ["Forecast"], "summary": "Recalculate balances", "responses": {"200": {"description": "OK"}}}},
        "/v1/payoff": {"get": {"tags": ["Forecast"], "summary": "Get payoff schedule", "parameters": [
            {"type": "string", "description": "One of AVALANCHE, SNOWBALL, HYBRID, HIGH_UTILIZATION, CASH_ON_HAND", "name": "strategy", "in": "query"},
            {"type": "string", "description": "Total monthly budget for all cards", "name": "budget", "in": "query", "required": true}
        ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/v1/payoff/compare": {"get": {"tags": ["Forecast"], "summary": "Compare payoff strategies", "parameters": [
            {"type": "string", "description": "Total monthly budget for all cards", "name": "budget", "in": "query", "required": true}
        ], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/v1/transactions/{id}/post": {"post": {"tags": ["Transactions"], "summary": "Post transaction", "parameters": [
            {"type": "string", "description": "ID of the transaction", "name": "id", "in": "path", "required": true}
        ], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "",
	Description:      "",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
