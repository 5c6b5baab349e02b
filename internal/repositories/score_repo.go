// internal/repositories/score_repo.go
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tomhenman/trustable/internal/models"
)

type compositeScoreRepo struct {
	db *sqlx.DB
}

func NewCompositeScoreRepo(db *sqlx.DB) CompositeScoreRepository {
	return &compositeScoreRepo{db: db}
}

const insertScoreQuery = `
	INSERT INTO composite_scores (
		score_id, business_id, scan_id,
		visibility, sentiment, confidence, recommendation, citation, trust, overall,
		response_count, previous_score_id, overall_change, created_at
	) VALUES (
		:score_id, :business_id, :scan_id,
		:visibility, :sentiment, :confidence, :recommendation, :citation, :trust, :overall,
		:response_count, :previous_score_id, :overall_change, :created_at
	)`

// Create appends one score row. There is no update path: the score history
// is append-only and rows are immutable once written.
func (r *compositeScoreRepo) Create(ctx context.Context, score *models.CompositeScore) error {
	return createScore(ctx, r.db, score)
}

func (r *compositeScoreRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, score *models.CompositeScore) error {
	return createScore(ctx, tx, score)
}

func createScore(ctx context.Context, ext sqlx.ExtContext, score *models.CompositeScore) error {
	if _, err := sqlx.NamedExecContext(ctx, ext, insertScoreQuery, score); err != nil {
		return fmt.Errorf("failed to create composite score: %w", err)
	}
	return nil
}

func (r *compositeScoreRepo) GetLatestForBusiness(ctx context.Context, businessID uuid.UUID) (*models.CompositeScore, error) {
	var score models.CompositeScore
	err := r.db.GetContext(ctx, &score,
		`SELECT * FROM composite_scores WHERE business_id = $1
		 ORDER BY created_at DESC LIMIT 1`, businessID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score for business %s: %w", businessID, err)
	}
	return &score, nil
}

func (r *compositeScoreRepo) GetHistoryForBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*models.CompositeScore, error) {
	var scores []*models.CompositeScore
	err := r.db.SelectContext(ctx, &scores,
		`SELECT * FROM composite_scores WHERE business_id = $1
		 ORDER BY created_at DESC LIMIT $2`, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get score history for business %s: %w", businessID, err)
	}
	return scores, nil
}
