package dto

// CheckResponse is the outcome of an authorization check.
type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
