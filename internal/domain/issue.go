package domain

import "time"

// TicketNumberBase is the first ticket number the store hands out.
// Numbers only grow and are never reused, even after a delete.
const TicketNumberBase = 500

// Issue is the aggregate for tracked bug reports.
type Issue struct {
	ID           string
	TicketNumber int64
	OwnerUserID  string
	CreatedBy    string
	Title        string
	Type         string
	Priority     string
	Environment  string
	Actions      string
	Expected     string
	Actual       string
	Completed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
