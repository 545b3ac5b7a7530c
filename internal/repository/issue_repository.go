package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/collation"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ErrDuplicateTitle is returned when a write loses the race against the
// unique index on the folded title. The service-level duplicate check runs
// first; this is the authoritative backstop.
var ErrDuplicateTitle = errors.New("duplicate issue title")

// IssueRepository encapsulates issue persistence. The store owns id and
// ticket number generation, timestamp maintenance, and the folded title key.
type IssueRepository interface {
	FindAll(ctx context.Context) ([]domain.Issue, error)
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	FindByTitle(ctx context.Context, title string) (*domain.Issue, error)
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	Delete(ctx context.Context, id string) (*domain.Issue, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, ticket_number, owner_user_id, created_by, title, type, priority,
               environment, actions, expected, actual, completed, created_at, updated_at`

func (r *issueRepository) FindAll(ctx context.Context) ([]domain.Issue, error) {
	const query = `
        SELECT ` + issueColumns + `
        FROM issues ORDER BY ticket_number`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        SELECT ` + issueColumns + `
        FROM issues WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// FindByTitle looks up an issue by folded title, so "Login Bug" and
// "login bug" resolve to the same record.
func (r *issueRepository) FindByTitle(ctx context.Context, title string) (*domain.Issue, error) {
	const query = `
        SELECT ` + issueColumns + `
        FROM issues WHERE title_key=$1`
	return r.fetchSingle(ctx, query, collation.TitleKey(title))
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (owner_user_id, created_by, title, title_key, type, priority, environment, actions, expected, actual)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, ticket_number, completed, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		issue.OwnerUserID,
		issue.CreatedBy,
		issue.Title,
		collation.TitleKey(issue.Title),
		issue.Type,
		issue.Priority,
		issue.Environment,
		issue.Actions,
		issue.Expected,
		issue.Actual,
	).Scan(&issue.ID, &issue.TicketNumber, &issue.Completed, &issue.CreatedAt, &issue.UpdatedAt)
	return mapTitleConflict(err)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET owner_user_id=$1, created_by=$2, title=$3, title_key=$4, type=$5, priority=$6,
            environment=$7, actions=$8, expected=$9, actual=$10, completed=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		issue.OwnerUserID,
		issue.CreatedBy,
		issue.Title,
		collation.TitleKey(issue.Title),
		issue.Type,
		issue.Priority,
		issue.Environment,
		issue.Actions,
		issue.Expected,
		issue.Actual,
		issue.Completed,
		issue.ID,
	)
	if err != nil {
		return mapTitleConflict(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the issue and returns the removed record so callers can
// build the confirmation message from its fields.
func (r *issueRepository) Delete(ctx context.Context, id string) (*domain.Issue, error) {
	const query = `
        DELETE FROM issues WHERE id=$1
        RETURNING ` + issueColumns
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Issue, error) {
	var issue domain.Issue
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&issue.ID,
		&issue.TicketNumber,
		&issue.OwnerUserID,
		&issue.CreatedBy,
		&issue.Title,
		&issue.Type,
		&issue.Priority,
		&issue.Environment,
		&issue.Actions,
		&issue.Expected,
		&issue.Actual,
		&issue.Completed,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := rows.Scan(
			&issue.ID,
			&issue.TicketNumber,
			&issue.OwnerUserID,
			&issue.CreatedBy,
			&issue.Title,
			&issue.Type,
			&issue.Priority,
			&issue.Environment,
			&issue.Actions,
			&issue.Expected,
			&issue.Actual,
			&issue.Completed,
			&issue.CreatedAt,
			&issue.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func mapTitleConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "issues_title_key_uniq" {
		return ErrDuplicateTitle
	}
	return err
}
