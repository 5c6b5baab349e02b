// internal/repositories/business_repo.go
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

type businessRepo struct {
	db *sqlx.DB
}

func NewBusinessRepo(db *sqlx.DB) BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) Create(ctx context.Context, business *models.Business) error {
	query := `
		INSERT INTO businesses (business_id, name, industry, scheduled_dow, active, created_at, updated_at)
		VALUES (:business_id, :name, :industry, :scheduled_dow, :active, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, business); err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	for _, website := range business.Websites {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO business_websites (business_id, url) VALUES ($1, $2)`,
			business.BusinessID, website); err != nil {
			return fmt.Errorf("failed to create business website: %w", err)
		}
	}

	return r.SetCompetitors(ctx, business.BusinessID, business.Competitors)
}

func (r *businessRepo) GetByID(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	var business models.Business
	err := r.db.GetContext(ctx, &business,
		`SELECT business_id, name, industry, scheduled_dow, active, created_at, updated_at
		 FROM businesses WHERE business_id = $1`, businessID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business %s: %w", businessID, err)
	}

	if err := r.db.SelectContext(ctx, &business.Websites,
		`SELECT url FROM business_websites WHERE business_id = $1 ORDER BY url`, businessID); err != nil {
		return nil, fmt.Errorf("failed to get business websites: %w", err)
	}

	if err := r.db.SelectContext(ctx, &business.Competitors,
		`SELECT name FROM business_competitors WHERE business_id = $1 ORDER BY position`, businessID); err != nil {
		return nil, fmt.Errorf("failed to get business competitors: %w", err)
	}

	if err := r.db.SelectContext(ctx, &business.Prompts,
		`SELECT prompt_text FROM business_prompts WHERE business_id = $1 ORDER BY position`, businessID); err != nil {
		return nil, fmt.Errorf("failed to get business prompts: %w", err)
	}

	return &business, nil
}

func (r *businessRepo) GetIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids,
		`SELECT business_id FROM businesses WHERE active AND scheduled_dow = $1`, dow)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled businesses for DOW %d: %w", dow, err)
	}
	return ids, nil
}

// GetCountByWeekday reports how many active businesses are scheduled per
// weekday, keyed by day name with Monday as DOW zero.
func (r *businessRepo) GetCountByWeekday(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		DOW   int `db:"scheduled_dow"`
		Count int `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT scheduled_dow, COUNT(*) AS count
		 FROM businesses
		 WHERE active AND scheduled_dow IS NOT NULL
		 GROUP BY scheduled_dow`)
	if err != nil {
		return nil, fmt.Errorf("failed to count businesses by weekday: %w", err)
	}

	dayNames := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	counts := make(map[string]int, len(dayNames))
	for _, day := range dayNames {
		counts[day] = 0
	}
	for _, row := range rows {
		if row.DOW >= 0 && row.DOW < len(dayNames) {
			counts[dayNames[row.DOW]] = row.Count
		}
	}
	return counts, nil
}

// SetCompetitors replaces the business's competitor list. Position is kept
// so the profile's competitor ordering survives round trips.
func (r *businessRepo) SetCompetitors(ctx context.Context, businessID uuid.UUID, competitors []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin competitors tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM business_competitors WHERE business_id = $1`, businessID); err != nil {
		return fmt.Errorf("failed to clear competitors: %w", err)
	}

	for position, name := range competitors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO business_competitors (business_id, name, position) VALUES ($1, $2, $3)`,
			businessID, name, position); err != nil {
			return fmt.Errorf("failed to insert competitor %s: %w", name, err)
		}
	}

	return tx.Commit()
}
