// internal/repositories/interfaces.go
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tomhenman/trustable/internal/models"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	GetIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error)
	GetCountByWeekday(ctx context.Context) (map[string]int, error)
	SetCompetitors(ctx context.Context, businessID uuid.UUID, competitors []string) error
}

type ResponseAnalysisRepository interface {
	Create(ctx context.Context, analysis *models.ResponseAnalysis) error
	// CreateTx writes through an open transaction so a scan's analyses
	// commit or roll back together with their composite score.
	CreateTx(ctx context.Context, tx *sqlx.Tx, analysis *models.ResponseAnalysis) error
	GetByScan(ctx context.Context, scanID uuid.UUID) ([]*models.ResponseAnalysis, error)
	GetByBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*models.ResponseAnalysis, error)
}

type CompositeScoreRepository interface {
	Create(ctx context.Context, score *models.CompositeScore) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, score *models.CompositeScore) error
	// GetLatestForBusiness returns the most recently created score for the
	// business, or nil when the business has never been scored. This is the
	// "previous" side of every drift comparison.
	GetLatestForBusiness(ctx context.Context, businessID uuid.UUID) (*models.CompositeScore, error)
	GetHistoryForBusiness(ctx context.Context, businessID uuid.UUID, limit int) ([]*models.CompositeScore, error)
}

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, alert *models.Alert) error
	GetUnreadForBusiness(ctx context.Context, businessID uuid.UUID) ([]*models.Alert, error)
}
