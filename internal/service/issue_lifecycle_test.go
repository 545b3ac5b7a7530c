package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/collation"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// fakeIssueStore mimics the Postgres-backed store: sequence-assigned ticket
// numbers starting at the base, folded-title unique constraint, timestamps.
type fakeIssueStore struct {
	mu         sync.Mutex
	issues     map[string]*domain.Issue
	nextTicket int64
	nextID     int
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{
		issues:     make(map[string]*domain.Issue),
		nextTicket: domain.TicketNumberBase,
	}
}

func (s *fakeIssueStore) FindAll(context.Context) ([]domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Issue
	for _, issue := range s.issues {
		all = append(all, *issue)
	}
	return all, nil
}

func (s *fakeIssueStore) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *issue
	return &copied, nil
}

func (s *fakeIssueStore) FindByTitle(_ context.Context, title string) (*domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := collation.TitleKey(title)
	for _, issue := range s.issues {
		if collation.TitleKey(issue.Title) == key {
			copied := *issue
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeIssueStore) Create(_ context.Context, issue *domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := collation.TitleKey(issue.Title)
	for _, existing := range s.issues {
		if collation.TitleKey(existing.Title) == key {
			return repository.ErrDuplicateTitle
		}
	}
	s.nextID++
	issue.ID = fmt.Sprintf("issue-%d", s.nextID)
	issue.TicketNumber = s.nextTicket
	s.nextTicket++
	issue.Completed = false
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	copied := *issue
	s.issues[issue.ID] = &copied
	return nil
}

func (s *fakeIssueStore) Update(_ context.Context, issue *domain.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.issues[issue.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	key := collation.TitleKey(issue.Title)
	for id, existing := range s.issues {
		if id != issue.ID && collation.TitleKey(existing.Title) == key {
			return repository.ErrDuplicateTitle
		}
	}
	copied := *issue
	copied.CreatedAt = stored.CreatedAt
	copied.UpdatedAt = time.Now()
	s.issues[issue.ID] = &copied
	return nil
}

func (s *fakeIssueStore) Delete(_ context.Context, id string) (*domain.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(s.issues, id)
	return issue, nil
}

func TestIssueLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeIssueStore()
	users := &mockUserDirectory{
		UsernameFunc: func(_ context.Context, userID string) (string, bool, error) {
			if userID == "u1" {
				return "dana", true, nil
			}
			return "", false, nil
		},
	}
	svc := newTestService(store, users, &mockDispatcher{})

	// Empty store: listing fails.
	_, err := svc.List(ctx)
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "NOT_FOUND"))

	// Create succeeds and assigns the base ticket number.
	input := validCreateInput()
	first, err := svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, int64(500), first.TicketNumber)
	assert.False(t, first.Completed)

	// Case-different duplicate is rejected.
	dup := validCreateInput()
	dup.Title = "crash on save"
	_, err = svc.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "CONFLICT"))

	// A second distinct issue gets a strictly greater ticket number.
	second := validCreateInput()
	second.Title = "Login Bug"
	created, err := svc.Create(ctx, second)
	require.NoError(t, err)
	assert.Greater(t, created.TicketNumber, first.TicketNumber)

	// Listing enriches each issue with its owner's username.
	enriched, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 2)
	for _, entry := range enriched {
		assert.Equal(t, "dana", entry.Username)
	}

	// Full-replace update keeping the same title, flipping completed.
	updated, err := svc.Update(ctx, IssueUpdateInput{
		ID:               first.ID,
		Completed:        boolPtr(true),
		IssueCreateInput: input,
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Crash on save", updated.Title)

	// Renaming onto the other issue's title (accent-different) conflicts.
	renamed := input
	renamed.Title = "LÖGIN BUG"
	_, err = svc.Update(ctx, IssueUpdateInput{
		ID:               first.ID,
		Completed:        boolPtr(true),
		IssueCreateInput: renamed,
	})
	require.Error(t, err)
	assert.True(t, errorutil.IsCode(err, "CONFLICT"))

	// Delete removes the record permanently.
	removed, err := svc.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Crash on save", removed.Title)

	_, err = store.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	enriched, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	assert.Equal(t, "Login Bug", enriched[0].Title)

	// A new issue never reuses a ticket number, even after the delete.
	third := validCreateInput()
	third.Title = "Crash on load"
	replacement, err := svc.Create(ctx, third)
	require.NoError(t, err)
	assert.Greater(t, replacement.TicketNumber, created.TicketNumber)
}

func boolPtr(b bool) *bool {
	return &b
}
