package models

// ErrorResponse is the standard error envelope returned by handlers.
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid session"`
	Details string `json:"details,omitempty" example:"session not found"`
}

// MessageResponse is the standard success envelope for mutations that do not
// return an entity.
type MessageResponse struct {
	Message string `json:"message" example:"Deleted successfully"`
}

// SessionResponse is returned by login and refresh endpoints.
type SessionResponse struct {
	SessionID    string `json:"session_id"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    string `json:"expires_at"`
	User         *User  `json:"user,omitempty"`
}

// Pagination describes a paginated list response.
type Pagination struct {
	CurrentPage  int  `json:"current_page" example:"1"`
	PageSize     int  `json:"page_size" example:"10"`
	TotalRecords int  `json:"total_records" example:"42"`
	TotalPages   int  `json:"total_pages" example:"5"`
	HasNext      bool `json:"has_next" example:"true"`
	HasPrev      bool `json:"has_prev" example:"false"`
}

// ImportResult summarizes a CSV import run.
type ImportResult struct {
	Imported int      `json:"imported" example:"25"`
	Failed   int      `json:"failed" example:"2"`
	Errors   []string `json:"errors,omitempty"`
}
