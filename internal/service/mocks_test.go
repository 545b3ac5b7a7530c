package service

import (
	"context"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
)

type mockIssueRepository struct {
	FindAllFunc     func(ctx context.Context) ([]domain.Issue, error)
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Issue, error)
	FindByTitleFunc func(ctx context.Context, title string) (*domain.Issue, error)
	CreateFunc      func(ctx context.Context, issue *domain.Issue) error
	UpdateFunc      func(ctx context.Context, issue *domain.Issue) error
	DeleteFunc      func(ctx context.Context, id string) (*domain.Issue, error)

	createCalls int
	updateCalls int
	deleteCalls int
}

func (m *mockIssueRepository) FindAll(ctx context.Context) ([]domain.Issue, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockIssueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockIssueRepository) FindByTitle(ctx context.Context, title string) (*domain.Issue, error) {
	if m.FindByTitleFunc != nil {
		return m.FindByTitleFunc(ctx, title)
	}
	return nil, nil
}

func (m *mockIssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	m.createCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, issue)
	}
	return nil
}

func (m *mockIssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	m.updateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, issue)
	}
	return nil
}

func (m *mockIssueRepository) Delete(ctx context.Context, id string) (*domain.Issue, error) {
	m.deleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil, nil
}

type mockUserDirectory struct {
	UsernameFunc func(ctx context.Context, userID string) (string, bool, error)
}

func (m *mockUserDirectory) Username(ctx context.Context, userID string) (string, bool, error) {
	if m.UsernameFunc != nil {
		return m.UsernameFunc(ctx, userID)
	}
	return "", false, nil
}

type mockDispatcher struct {
	published []events.Event
}

func (m *mockDispatcher) Publish(_ context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockDispatcher) Subscribe(events.EventType, events.EventHandler) {}
