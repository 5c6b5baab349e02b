// services/alert_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/models"
)

type alertService struct {
	cfg *config.EngineConfig
}

func NewAlertService(cfg *config.EngineConfig) AlertService {
	return &alertService{cfg: cfg}
}

// LinkPrevious stamps the drift fields onto a freshly aggregated score
// before it is persisted. Scores are immutable once stored, so this is the
// only moment the link can be written.
func (s *alertService) LinkPrevious(current *models.CompositeScore, previous *models.CompositeScore) {
	if current == nil || previous == nil {
		return
	}
	previousID := previous.ScoreID
	change := current.Overall - previous.Overall
	current.PreviousScoreID = &previousID
	current.OverallChange = &change
}

// Evaluate compares the new overall score against the immediately preceding
// one and emits at most one alert. The first scan for a business only
// establishes the baseline. Fetching "previous" belongs to the storage
// layer; this evaluator is stateless given its two inputs.
func (s *alertService) Evaluate(current *models.CompositeScore, previous *models.CompositeScore) *models.Alert {
	if current == nil || previous == nil {
		return nil
	}

	delta := current.Overall - previous.Overall

	var alertType models.AlertType
	var severity models.AlertSeverity
	var message string

	switch {
	case delta <= s.cfg.DropCritical:
		alertType = models.AlertScoreDrop
		severity = models.SeverityCritical
		message = fmt.Sprintf("Overall score dropped %d points (%d → %d)", -delta, previous.Overall, current.Overall)
	case delta <= s.cfg.DropWarning:
		alertType = models.AlertScoreDrop
		severity = models.SeverityWarning
		message = fmt.Sprintf("Overall score dropped %d points (%d → %d)", -delta, previous.Overall, current.Overall)
	case delta >= s.cfg.GainStrong:
		alertType = models.AlertScoreImprovement
		severity = models.SeverityPositive
		message = fmt.Sprintf("Overall score improved sharply, up %d points (%d → %d)", delta, previous.Overall, current.Overall)
	case delta >= s.cfg.GainPositive:
		alertType = models.AlertScoreImprovement
		severity = models.SeverityPositive
		message = fmt.Sprintf("Overall score improved %d points (%d → %d)", delta, previous.Overall, current.Overall)
	default:
		return nil
	}

	return &models.Alert{
		AlertID:         uuid.New(),
		BusinessID:      current.BusinessID,
		ScoreID:         current.ScoreID,
		Type:            alertType,
		Severity:        severity,
		Message:         message,
		CurrentOverall:  current.Overall,
		PreviousOverall: previous.Overall,
		Delta:           delta,
		CreatedAt:       time.Now().UTC(),
	}
}
