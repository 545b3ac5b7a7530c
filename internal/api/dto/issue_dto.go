package dto

import "time"

// CreateIssueRequest payload. Every field except createdByDisplayName is
// required; presence is validated by the service.
type CreateIssueRequest struct {
	OwnerUserID string `json:"ownerUserId"`
	CreatedBy   string `json:"createdByDisplayName"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Environment string `json:"environment"`
	Actions     string `json:"actions"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual"`
}

// UpdateIssueRequest payload for the full-replace update. Completed is a
// pointer so a missing or non-boolean value fails validation instead of
// silently defaulting to false.
type UpdateIssueRequest struct {
	ID        string `json:"id"`
	Completed *bool  `json:"completed"`
	CreateIssueRequest
}

// DeleteIssueRequest payload.
type DeleteIssueRequest struct {
	ID string `json:"id"`
}

// IssueResponse is one list entry: the stored issue plus the owner's
// resolved username.
type IssueResponse struct {
	ID           string    `json:"id"`
	TicketNumber int64     `json:"ticketNumber"`
	OwnerUserID  string    `json:"ownerUserId"`
	CreatedBy    string    `json:"createdByDisplayName,omitempty"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Priority     string    `json:"priority"`
	Environment  string    `json:"environment"`
	Actions      string    `json:"actions"`
	Expected     string    `json:"expected"`
	Actual       string    `json:"actual"`
	Completed    bool      `json:"completed"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
