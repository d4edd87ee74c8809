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

const workletColumns = `
	id, title, description, status, mentor_id, created_at`

func scanWorklet(row pgx.Row) (*models.Worklet, error) {
	var w models.Worklet
	var description *string

	err := row.Scan(&w.ID, &w.Title, &description, &w.Status, &w.MentorID, &w.CreatedAt)
	if err != nil {
		return nil, err
	}

	if description != nil {
		w.Description = *description
	}

	return &w, nil
}

// GetAllWorklets fetches all worklets, newest first
func (c *Client) GetAllWorklets(ctx context.Context) ([]*models.Worklet, error) {
	start := time.Now()
	operation := "getAllWorklets"

	query := fmt.Sprintf(`SELECT %s FROM worklets ORDER BY created_at DESC`, workletColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query worklets: %w", err)
	}
	defer rows.Close()

	worklets := make([]*models.Worklet, 0)
	for rows.Next() {
		worklet, err := scanWorklet(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to scan worklet row: %w", err)
		}
		worklets = append(worklets, worklet)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating worklet rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(worklets)))

	return worklets, nil
}

// GetWorkletByID fetches a worklet by primary key
func (c *Client) GetWorkletByID(ctx context.Context, id int64) (*models.Worklet, error) {
	start := time.Now()
	operation := "getWorkletByID"

	query := fmt.Sprintf(`SELECT %s FROM worklets WHERE id = $1`, workletColumns)

	worklet, err := scanWorklet(c.pool.QueryRow(ctx, query, id))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("worklet")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query worklet: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return worklet, nil
}

// CreateWorklet inserts a worklet and fills in its id and created_at
func (c *Client) CreateWorklet(ctx context.Context, worklet *models.Worklet) error {
	start := time.Now()
	operation := "createWorklet"

	query := `
		INSERT INTO worklets (title, description, status, mentor_id)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, created_at
	`

	err := c.pool.QueryRow(ctx, query,
		worklet.Title, worklet.Description, worklet.Status, worklet.MentorID,
	).Scan(&worklet.ID, &worklet.CreatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create worklet: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int64("worklet_id", worklet.ID))

	return nil
}

// UpdateWorklet applies the non-nil fields of req to the worklet row
func (c *Client) UpdateWorklet(ctx context.Context, id int64, req *models.UpdateWorkletRequest) (*models.Worklet, error) {
	start := time.Now()
	operation := "updateWorklet"

	setClauses := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	args = append(args, id)

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		addSet("title", *req.Title)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Status != nil {
		addSet("status", *req.Status)
	}
	if req.MentorID != nil {
		addSet("mentor_id", *req.MentorID)
	}

	if len(setClauses) == 0 {
		return c.GetWorkletByID(ctx, id)
	}

	query := fmt.Sprintf(
		`UPDATE worklets SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(setClauses, ", "), workletColumns,
	)

	worklet, err := scanWorklet(c.pool.QueryRow(ctx, query, args...))
	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "success", duration)
		return nil, apperrors.NotFoundError("worklet")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update worklet: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return worklet, nil
}

// DeleteWorklet removes a worklet row
func (c *Client) DeleteWorklet(ctx context.Context, id int64) error {
	start := time.Now()
	operation := "deleteWorklet"

	tag, err := c.pool.Exec(ctx, `DELETE FROM worklets WHERE id = $1`, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to delete worklet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "success", duration)
		return apperrors.NotFoundError("worklet")
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int64("worklet_id", id))

	return nil
}
