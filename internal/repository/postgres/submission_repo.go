package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"moondev-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionColumns = `id, user_id, full_name, email, phone_number, location, hobbies,
	profile_picture_url, source_code_url, status, feedback, created_at`

type submissionRepo struct {
	db *pgxpool.Pool
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *pgxpool.Pool) domain.SubmissionRepository {
	return &submissionRepo{db: db}
}

// Create inserts a new submission. The unique index on user_id is the
// final arbiter of the one-submission-per-developer rule; a violation
// surfaces as domain.ErrDuplicateSubmission.
func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	query := `
		INSERT INTO submissions (id, user_id, full_name, email, phone_number, location, hobbies,
			profile_picture_url, source_code_url, status, feedback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Status == "" {
		sub.Status = domain.SubmissionStatusPending
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, query,
		sub.ID,
		sub.UserID,
		sub.FullName,
		sub.Email,
		sub.PhoneNumber,
		sub.Location,
		sub.Hobbies,
		sub.ProfilePictureURL,
		sub.SourceCodeURL,
		sub.Status,
		sub.Feedback,
		sub.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

// GetByID retrieves a submission by ID
func (r *submissionRepo) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := r.scanOne(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

// GetByUserID retrieves the single submission owned by a developer
func (r *submissionRepo) GetByUserID(ctx context.Context, userID string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1`

	sub, err := r.scanOne(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ExistsByUserID checks whether a submission already exists for the user
func (r *submissionRepo) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM submissions WHERE user_id = $1)`
	var exists bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&exists)
	return exists, err
}

// List retrieves submissions newest first, optionally narrowed by
// status and a case-insensitive search over name, email and location.
func (r *submissionRepo) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $1`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := "$" + strconv.Itoa(len(args))
		query += ` AND (full_name ILIKE ` + p + ` OR email ILIKE ` + p + ` OR location ILIKE ` + p + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(
			&sub.ID, &sub.UserID, &sub.FullName, &sub.Email, &sub.PhoneNumber,
			&sub.Location, &sub.Hobbies, &sub.ProfilePictureURL, &sub.SourceCodeURL,
			&sub.Status, &sub.Feedback, &sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

// Decide performs the conditional terminal update. The WHERE clause
// re-checks status = 'pending' at mutation time so that of two
// concurrent decisions exactly one matches; the loser gets zero rows
// back. A follow-up read tells an unknown id (ErrNotFound) apart from
// a row another evaluator already decided (ErrAlreadyDecided).
func (r *submissionRepo) Decide(ctx context.Context, id, status, feedback string) (*domain.Submission, error) {
	query := `
		UPDATE submissions
		SET status = $2, feedback = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + submissionColumns

	sub, err := r.scanOne(r.db.QueryRow(ctx, query, id, status, feedback))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			if existing.IsDecided() {
				return nil, domain.ErrAlreadyDecided
			}
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepo) scanOne(row pgx.Row) (*domain.Submission, error) {
	var sub domain.Submission
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.FullName, &sub.Email, &sub.PhoneNumber,
		&sub.Location, &sub.Hobbies, &sub.ProfilePictureURL, &sub.SourceCodeURL,
		&sub.Status, &sub.Feedback, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
