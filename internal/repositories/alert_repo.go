// internal/repositories/alert_repo.go
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tomhenman/trustable/internal/models"
)

type alertRepo struct {
	db *sqlx.DB
}

func NewAlertRepo(db *sqlx.DB) AlertRepository {
	return &alertRepo{db: db}
}

const insertAlertQuery = `
	INSERT INTO alerts (
		alert_id, business_id, score_id, type, severity, message,
		current_overall, previous_overall, delta, read, created_at
	) VALUES (
		:alert_id, :business_id, :score_id, :type, :severity, :message,
		:current_overall, :previous_overall, :delta, :read, :created_at
	)`

func (r *alertRepo) Create(ctx context.Context, alert *models.Alert) error {
	return createAlert(ctx, r.db, alert)
}

func (r *alertRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, alert *models.Alert) error {
	return createAlert(ctx, tx, alert)
}

func createAlert(ctx context.Context, ext sqlx.ExtContext, alert *models.Alert) error {
	if _, err := sqlx.NamedExecContext(ctx, ext, insertAlertQuery, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepo) GetUnreadForBusiness(ctx context.Context, businessID uuid.UUID) ([]*models.Alert, error) {
	var alerts []*models.Alert
	err := r.db.SelectContext(ctx, &alerts,
		`SELECT * FROM alerts WHERE business_id = $1 AND NOT read
		 ORDER BY created_at DESC`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread alerts for business %s: %w", businessID, err)
	}
	return alerts, nil
}
