// Package docs registers the OpenAPI spec served at /swagger.
// Kept by hand; regenerate with `swag init -g cmd/server/main.go` when the
// annotated handlers change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Vaibhav K Joshi"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/signup": {"post": {"tags": ["auth"], "summary": "Sign up"}},
        "/login": {"post": {"tags": ["auth"], "summary": "Login"}},
        "/me": {"get": {"tags": ["auth"], "summary": "Get current user profile"}},
        "/partners": {
            "get": {"tags": ["partners"], "summary": "List contacts"},
            "post": {"tags": ["partners"], "summary": "Create contact"}
        },
        "/partners/{id}": {
            "get": {"tags": ["partners"], "summary": "Contact detail"},
            "patch": {"tags": ["partners"], "summary": "Update contact"}
        },
        "/cases": {
            "get": {"tags": ["cases"], "summary": "List cases"},
            "post": {"tags": ["cases"], "summary": "Create case"}
        },
        "/cases/{id}": {
            "get": {"tags": ["cases"], "summary": "Case detail"},
            "patch": {"tags": ["cases"], "summary": "Update case"},
            "delete": {"tags": ["cases"], "summary": "Delete case"}
        },
        "/cases/{id}/actions/hearings": {"get": {"tags": ["cases"], "summary": "Hearings window action"}},
        "/cases/{id}/actions/invoices": {"get": {"tags": ["cases"], "summary": "Invoices window action"}},
        "/cases/{id}/actions/attachments": {"get": {"tags": ["cases"], "summary": "Documents window action"}},
        "/cases/{id}/hearings": {"get": {"tags": ["hearings"], "summary": "List hearings for a case"}},
        "/cases/{id}/invoice": {"post": {"tags": ["invoices"], "summary": "Create the fixed-fee invoice for a case"}},
        "/cases/{id}/invoices": {"get": {"tags": ["invoices"], "summary": "List invoices linked to a case"}},
        "/cases/{id}/summary": {"get": {"tags": ["reports"], "summary": "Render the case summary report"}},
        "/cases/{id}/attachments": {
            "get": {"tags": ["attachments"], "summary": "List documents attached to a case"},
            "post": {"tags": ["attachments"], "summary": "Upload attachments to a case (PDF/PNG)"}
        },
        "/attachments/{id}": {"delete": {"tags": ["attachments"], "summary": "Delete attachment"}},
        "/attachments/{id}/signed-url": {"get": {"tags": ["attachments"], "summary": "Get signed URL"}},
        "/hearings": {"post": {"tags": ["hearings"], "summary": "Schedule hearing"}},
        "/hearings/{id}": {
            "get": {"tags": ["hearings"], "summary": "Hearing detail"},
            "patch": {"tags": ["hearings"], "summary": "Update hearing"},
            "delete": {"tags": ["hearings"], "summary": "Delete hearing"}
        },
        "/invoices/{id}": {"get": {"tags": ["invoices"], "summary": "Invoice detail"}},
        "/invoices/{id}/cancel": {"post": {"tags": ["invoices"], "summary": "Cancel an invoice"}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Format: Bearer <token>",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{"http"},
	Title:            "Legal Case Management API",
	Description:      "Business-records API for a law office: cases, hearings, contacts, fixed-fee invoicing, and case reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
