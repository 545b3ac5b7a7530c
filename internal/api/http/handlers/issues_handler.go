package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
	"github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssuesHandler exposes the /issues resource.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// List GET /issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	issues, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return c.JSON(items)
}

// Create POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	input := service.IssueCreateInput{
		OwnerUserID: req.OwnerUserID,
		CreatedBy:   req.CreatedBy,
		Title:       req.Title,
		Type:        req.Type,
		Priority:    req.Priority,
		Environment: req.Environment,
		Actions:     req.Actions,
		Expected:    req.Expected,
		Actual:      req.Actual,
	}
	if _, err := h.service.Create(c.UserContext(), input); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "New issue created"})
}

// Update PATCH /issues.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	input := service.IssueUpdateInput{
		ID:        req.ID,
		Completed: req.Completed,
		IssueCreateInput: service.IssueCreateInput{
			OwnerUserID: req.OwnerUserID,
			CreatedBy:   req.CreatedBy,
			Title:       req.Title,
			Type:        req.Type,
			Priority:    req.Priority,
			Environment: req.Environment,
			Actions:     req.Actions,
			Expected:    req.Expected,
			Actual:      req.Actual,
		},
	}
	issue, err := h.service.Update(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fmt.Sprintf("'%s' updated", issue.Title))
}

// Delete DELETE /issues.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	var req dto.DeleteIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.Delete(c.UserContext(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(fmt.Sprintf("Bug '%s' with ID %s deleted", issue.Title, issue.ID))
}

func issueResponse(issue *service.EnrichedIssue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:           issue.ID,
		TicketNumber: issue.TicketNumber,
		OwnerUserID:  issue.OwnerUserID,
		CreatedBy:    issue.CreatedBy,
		Title:        issue.Title,
		Type:         issue.Type,
		Priority:     issue.Priority,
		Environment:  issue.Environment,
		Actions:      issue.Actions,
		Expected:     issue.Expected,
		Actual:       issue.Actual,
		Completed:    issue.Completed,
		Username:     issue.Username,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
	}
}
