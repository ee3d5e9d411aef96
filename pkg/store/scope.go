package store

import "errors"

var ErrMissingTenant = errors.New("scope has no tenant")

// Scope identifies whose data a request may touch. It is built once per
// request by the auth layer and passed by value to every data access.
type Scope struct {
	TenantID      string `json:"tenant_id"`
	DevelopmentID string `json:"development_id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
}

func (s Scope) Validate() error {
	if s.TenantID == "" {
		return ErrMissingTenant
	}
	return nil
}

func (s Scope) HasDevelopment() bool {
	return s.DevelopmentID != ""
}

// CorpusID is the tenant document corpus for this scope: the development
// when one is selected, otherwise the tenant.
func (s Scope) CorpusID() string {
	if s.HasDevelopment() {
		return s.DevelopmentID
	}
	return s.TenantID
}
