package events

import "time"

// EventType labels issue lifecycle events.
type EventType string

const (
	EventIssueCreated EventType = "issue.created"
	EventIssueUpdated EventType = "issue.updated"
	EventIssueDeleted EventType = "issue.deleted"
)

// Event is the envelope published on the dispatcher.
type Event struct {
	ID          string
	Type        EventType
	IssueID     string
	ActorUserID string
	Timestamp   time.Time
	Payload     any
}

// IssueCreatedPayload accompanies issue.created.
type IssueCreatedPayload struct {
	TicketNumber int64
	Title        string
	OwnerUserID  string
}

// IssueUpdatedPayload accompanies issue.updated.
type IssueUpdatedPayload struct {
	Title     string
	Completed bool
}

// IssueDeletedPayload accompanies issue.deleted.
type IssueDeletedPayload struct {
	TicketNumber int64
	Title        string
}
