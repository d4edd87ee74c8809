package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/internal/models"
	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"github.com/prism-worklet/prism-api/pkg/metrics"
)

const mentorColumns = `
	id, name, email, contact, team, expertise, photo_url, is_active, created_at`

func scanMentor(row pgx.Row) (*models.Mentor, error) {
	var m models.Mentor
	var contact, team, expertise, photoURL *string

	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &contact, &team, &expertise, &photoURL,
		&m.IsActive, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if contact != nil {
		m.Contact = *contact
	}
	if team != nil {
		m.Team = *team
	}
	if expertise != nil {
		m.Expertise = *expertise
	}
	if photoURL != nil {
		m.PhotoURL = *photoURL
	}

	return &m, nil
}

// GetAllMentors fetches all mentors ordered by name
func (c *Client) GetAllMentors(ctx context.Context) ([]*models.Mentor, error) {
	start := time.Now()
	operation := "getAllMentors"

	query := fmt.Sprintf(`SELECT %s FROM mentors ORDER BY name ASC`, mentorColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query mentors: %w", err)
	}
	defer rows.Close()

	mentors := make([]*models.Mentor, 0)
	for rows.Next() {
		mentor, err := scanMentor(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to scan mentor row: %w", err)
		}
		mentors = append(mentors, mentor)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating mentor rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(mentors)))

	return mentors, nil
}

// GetMentorByID fetches a mentor by primary key
func (c *Client) GetMentorByID(ctx context.Context, id int64) (*models.Mentor, error) {
	start := time.Now()
	operation := "getMentorByID"

	query := fmt.Sprintf(`SELECT %s FROM mentors WHERE id = $1`, mentorColumns)

	mentor, err := scanMentor(c.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("mentor")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query mentor: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return mentor, nil
}

// CreateMentor inserts a mentor and fills in its id and created_at
func (c *Client) CreateMentor(ctx context.Context, mentor *models.Mentor) error {
	start := time.Now()
	operation := "createMentor"

	query := `
		INSERT INTO mentors (name, email, contact, team, expertise, is_active)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, created_at
	`

	err := c.pool.QueryRow(ctx, query,
		mentor.Name, mentor.Email, mentor.Contact, mentor.Team, mentor.Expertise, mentor.IsActive,
	).Scan(&mentor.ID, &mentor.CreatedAt)

	duration := metrics.MeasureDuration(start)

	if isUniqueViolation(err) {
		recordMetrics(operation, "conflict", duration)
		return apperrors.ConflictError("mentor already exists")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create mentor: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int64("mentor_id", mentor.ID))

	return nil
}

// UpdateMentor applies the non-nil fields of req to the mentor row
func (c *Client) UpdateMentor(ctx context.Context, id int64, req *models.UpdateMentorRequest) (*models.Mentor, error) {
	start := time.Now()
	operation := "updateMentor"

	setClauses := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	args = append(args, id)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Email != nil {
		addSet("email", *req.Email)
	}
	if req.Contact != nil {
		addSet("contact", *req.Contact)
	}
	if req.Team != nil {
		addSet("team", *req.Team)
	}
	if req.Expertise != nil {
		addSet("expertise", *req.Expertise)
	}
	if req.IsActive != nil {
		addSet("is_active", *req.IsActive)
	}

	if len(setClauses) == 0 {
		return c.GetMentorByID(ctx, id)
	}

	query := fmt.Sprintf(
		`UPDATE mentors SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(setClauses, ", "), mentorColumns,
	)

	mentor, err := scanMentor(c.pool.QueryRow(ctx, query, args...))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("mentor")
	}
	if isUniqueViolation(err) {
		recordMetrics(operation, "conflict", duration)
		return nil, apperrors.ConflictError("mentor email already in use")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update mentor: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return mentor, nil
}

// UpdateMentorPhotoURL stores the uploaded profile photo location
func (c *Client) UpdateMentorPhotoURL(ctx context.Context, id int64, photoURL string) error {
	start := time.Now()
	operation := "updateMentorPhotoURL"

	tag, err := c.pool.Exec(ctx,
		`UPDATE mentors SET photo_url = $2 WHERE id = $1`,
		id, photoURL,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update mentor photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "success", duration)
		return apperrors.NotFoundError("mentor")
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// DeleteMentor removes a mentor row
func (c *Client) DeleteMentor(ctx context.Context, id int64) error {
	start := time.Now()
	operation := "deleteMentor"

	tag, err := c.pool.Exec(ctx, `DELETE FROM mentors WHERE id = $1`, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to delete mentor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "success", duration)
		return apperrors.NotFoundError("mentor")
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int64("mentor_id", id))

	return nil
}

// MentorExists reports whether a mentor row exists
func (c *Client) MentorExists(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	operation := "mentorExists"

	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM mentors WHERE id = $1)`, id,
	).Scan(&exists)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return false, fmt.Errorf("failed to check mentor existence: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return exists, nil
}
