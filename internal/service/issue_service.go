package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/issue-tracker/internal/cache"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// lookupConcurrency bounds the username fan-out during list enrichment.
const lookupConcurrency = 8

// IssueService owns the issue lifecycle: validation, duplicate detection,
// store orchestration, and list enrichment.
type IssueService struct {
	issues     repository.IssueRepository
	users      cache.UserDirectory
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo     repository.IssueRepository
	UserDirectory cache.UserDirectory
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// IssueCreateInput describes the create payload. CreatedBy is the only
// optional field.
type IssueCreateInput struct {
	OwnerUserID string
	CreatedBy   string
	Title       string
	Type        string
	Priority    string
	Environment string
	Actions     string
	Expected    string
	Actual      string
}

// IssueUpdateInput describes the full-replace update payload. Completed is a
// pointer so an absent or mistyped value is distinguishable from false.
type IssueUpdateInput struct {
	ID        string
	Completed *bool
	IssueCreateInput
}

// EnrichedIssue is an issue joined with its owner's display name.
type EnrichedIssue struct {
	domain.Issue
	Username string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		users:      deps.UserDirectory,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// List returns every issue with the owner's username attached. An empty
// collection is a NotFound failure. All lookups complete before returning;
// an owner id that matches no user yields an empty username rather than
// failing the whole listing.
func (s *IssueService) List(ctx context.Context) ([]EnrichedIssue, error) {
	issues, err := s.issues.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, errorutil.NewNotFound("No issues found")
	}

	enriched := make([]EnrichedIssue, len(issues))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(lookupConcurrency)
	for i := range issues {
		group.Go(func() error {
			username, found, err := s.users.Username(groupCtx, issues[i].OwnerUserID)
			if err != nil {
				return err
			}
			if !found {
				s.logger.Warn("issue owner has no user record",
					zap.String("issue_id", issues[i].ID),
					zap.String("owner_user_id", issues[i].OwnerUserID))
			}
			enriched[i] = EnrichedIssue{Issue: issues[i], Username: username}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

// Create validates the payload, rejects folded-title duplicates, and
// persists a new issue. The store assigns id, ticket number, and timestamps;
// completed always starts false.
func (s *IssueService) Create(ctx context.Context, input IssueCreateInput) (*domain.Issue, error) {
	if missing := missingCreateFields(input); len(missing) > 0 {
		return nil, errorutil.NewValidationError("All fields are required", map[string]any{"missing": missing})
	}

	duplicate, err := s.issues.FindByTitle(ctx, input.Title)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if duplicate != nil {
		return nil, errorutil.NewConflict("Duplicate bug title", nil)
	}

	issue := &domain.Issue{
		OwnerUserID: input.OwnerUserID,
		CreatedBy:   input.CreatedBy,
		Title:       input.Title,
		Type:        input.Type,
		Priority:    input.Priority,
		Environment: input.Environment,
		Actions:     input.Actions,
		Expected:    input.Expected,
		Actual:      input.Actual,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return nil, errorutil.NewConflict("Duplicate bug title", nil)
		}
		return nil, err
	}
	if issue.ID == "" {
		return nil, errorutil.NewValidationError("Invalid issue data received", nil)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventIssueCreated,
		IssueID:     issue.ID,
		ActorUserID: issue.OwnerUserID,
		Payload: events.IssueCreatedPayload{
			TicketNumber: issue.TicketNumber,
			Title:        issue.Title,
			OwnerUserID:  issue.OwnerUserID,
		},
	})
	return issue, nil
}

// Update performs a full field replace on an existing issue. The issue may
// keep its own title; any other issue owning the folded title is a conflict.
// Ownership fields are deliberately reassignable.
func (s *IssueService) Update(ctx context.Context, input IssueUpdateInput) (*domain.Issue, error) {
	missing := missingCreateFields(input.IssueCreateInput)
	if input.ID == "" {
		missing = append(missing, "id")
	}
	if input.Completed == nil {
		missing = append(missing, "completed")
	}
	if len(missing) > 0 {
		return nil, errorutil.NewValidationError("All fields are required", map[string]any{"missing": missing})
	}

	issue, err := s.issues.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("Bug report not found")
		}
		return nil, err
	}

	duplicate, err := s.issues.FindByTitle(ctx, input.Title)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if duplicate != nil && duplicate.ID != issue.ID {
		return nil, errorutil.NewConflict("Duplicate bug title", nil)
	}

	issue.OwnerUserID = input.OwnerUserID
	issue.CreatedBy = input.CreatedBy
	issue.Title = input.Title
	issue.Type = input.Type
	issue.Priority = input.Priority
	issue.Environment = input.Environment
	issue.Actions = input.Actions
	issue.Expected = input.Expected
	issue.Actual = input.Actual
	issue.Completed = *input.Completed

	if err := s.issues.Update(ctx, issue); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errorutil.NewNotFound("Bug report not found")
		case errors.Is(err, repository.ErrDuplicateTitle):
			return nil, errorutil.NewConflict("Duplicate bug title", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventIssueUpdated,
		IssueID:     issue.ID,
		ActorUserID: issue.OwnerUserID,
		Payload: events.IssueUpdatedPayload{
			Title:     issue.Title,
			Completed: issue.Completed,
		},
	})
	return issue, nil
}

// Delete permanently removes an issue and returns the removed record.
func (s *IssueService) Delete(ctx context.Context, id string) (*domain.Issue, error) {
	if id == "" {
		return nil, errorutil.NewValidationError("Bug ID required", nil)
	}

	issue, err := s.issues.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("Bug not found")
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventIssueDeleted,
		IssueID:     issue.ID,
		ActorUserID: issue.OwnerUserID,
		Payload: events.IssueDeletedPayload{
			TicketNumber: issue.TicketNumber,
			Title:        issue.Title,
		},
	})
	return issue, nil
}

func missingCreateFields(input IssueCreateInput) []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"ownerUserId", input.OwnerUserID},
		{"title", input.Title},
		{"type", input.Type},
		{"priority", input.Priority},
		{"environment", input.Environment},
		{"actions", input.Actions},
		{"expected", input.Expected},
		{"actual", input.Actual},
	}
	for _, field := range required {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

func (s *IssueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
