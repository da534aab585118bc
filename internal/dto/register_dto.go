package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateRegisterRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type UpdateRegisterRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegisterResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	// HasActiveSession is derived per read from the presence of an OPEN session.
	HasActiveSession bool `json:"has_active_session"`
}
