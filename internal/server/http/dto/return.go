package dto

// ReturnDiagnostic is served instead of a redirect when redirects are
// disabled for integration testing.
type ReturnDiagnostic struct {
	RedirectURL string `json:"redirect_url"`
	OrderStatus string `json:"order_status,omitempty"`
	State       string `json:"state,omitempty"`
	Notice      string `json:"notice,omitempty"`
}
