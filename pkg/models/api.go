// pkg/models/api.go
package models

// Laravel-style validation error response
type ValidationErrorResponse struct {
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// Generic error response (403/404/409/422/500)
type ErrorResponse struct {
	Error   bool   `json:"error" example:"true"`
	Message string `json:"message" example:"Forbidden"`
	Code    string `json:"code,omitempty" example:"FORBIDDEN"`
}

// WindowAction is a declarative description of a record window the UI should
// open: which model, filtered how, and with which creation defaults.
type WindowAction struct {
	Type     string         `json:"type"` // always "window"
	Name     string         `json:"name"`
	ResModel string         `json:"res_model"`
	ViewMode string         `json:"view_mode"`
	Domain   map[string]any `json:"domain"`
	Context  map[string]any `json:"context,omitempty"`
}
