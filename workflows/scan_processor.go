// workflows/scan_processor.go
package workflows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/google/uuid"
	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/internal/models"
	"github.com/tomhenman/trustable/services"
)

type ScanProcessor struct {
	scanService services.ScanService
	client      inngestgo.Client
	cfg         *config.Config
}

func NewScanProcessor(scanService services.ScanService, cfg *config.Config) *ScanProcessor {
	return &ScanProcessor{
		scanService: scanService,
		cfg:         cfg,
	}
}

func (p *ScanProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// ScanProcessEvent represents the event data for scan processing
type ScanProcessEvent struct {
	BusinessID  string `json:"business_id"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

func (p *ScanProcessor) ProcessScan() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-scan",
			Name:    "Process Business Scan - Signal Extraction & Composite Scoring Pipeline",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("scan.process", nil),
		func(ctx context.Context, input inngestgo.Input[ScanProcessEvent]) (any, error) {
			businessID := input.Event.Data.BusinessID
			fmt.Printf("[ProcessScan] Starting scan pipeline for business: %s\n", businessID)

			summary := &services.ScanSummary{}

			// Step 1: Load Business Profile
			businessData, err := step.Run(ctx, "load-business-profile", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[ProcessScan] Step 1: Loading business profile: %s\n", businessID)

				businessUUID, err := uuid.Parse(businessID)
				if err != nil {
					return nil, fmt.Errorf("invalid business ID: %w", err)
				}

				business, err := p.scanService.GetBusiness(ctx, businessUUID)
				if err != nil {
					return nil, err
				}

				fmt.Printf("[ProcessScan] ✅ Loaded business %s with %d websites, %d competitors, %d prompts\n",
					business.Name, len(business.Websites), len(business.Competitors), len(business.Prompts))
				return business, nil
			})
			if err != nil {
				reportScanFailure("load-business-profile", businessID, "", err)
				return nil, fmt.Errorf("step 1 failed: %w", err)
			}

			business, err := decodeBusiness(businessData)
			if err != nil {
				return nil, fmt.Errorf("step 1 returned malformed business: %w", err)
			}

			// Step 2: Backfill competitors for new profiles
			competitorData, err := step.Run(ctx, "ensure-competitors", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[ProcessScan] Step 2: Ensuring competitor list for business: %s\n", business.Name)

				if err := p.scanService.EnsureCompetitors(ctx, business); err != nil {
					// Discovery is best-effort; the scan still runs without
					// competitor signals.
					fmt.Printf("[ProcessScan] Warning: competitor discovery failed: %v\n", err)
				}
				return map[string]interface{}{
					"competitors": business.Competitors,
				}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 2 failed: %w", err)
			}
			if competitors, decodeErr := decodeCompetitors(competitorData); decodeErr == nil {
				business.Competitors = competitors
			}

			// Step 3: Run Prompt Matrix
			responsesData, err := step.Run(ctx, "run-prompt-matrix", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[ProcessScan] Step 3: Running prompt matrix for business: %s\n", business.Name)

				responses := p.scanService.RunPrompts(ctx, business, summary)
				return map[string]interface{}{
					"responses": responses,
					"summary":   summary,
				}, nil
			})
			if err != nil {
				reportScanFailure("run-prompt-matrix", businessID, business.Name, err)
				return nil, fmt.Errorf("step 3 failed: %w", err)
			}

			responses, err := decodePromptResponses(responsesData, summary)
			if err != nil {
				return nil, fmt.Errorf("step 3 returned malformed responses: %w", err)
			}

			// Step 4: Classify Responses and Score Scan. Extraction, classification
			// and aggregation are deterministic, so they run together in one
			// atomic step: a retry re-derives the exact same score. The scan ID
			// is minted inside the step so memoized replays keep it stable.
			scoreData, err := step.Run(ctx, "classify-and-score", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[ProcessScan] Step 4: Classifying %d responses for business: %s\n", len(responses), business.Name)

				scanID := uuid.New()
				batch, err := p.scanService.AnalyzeResponses(scanID, business, responses, summary)
				if err != nil {
					return nil, err
				}

				score, alert, err := p.scanService.ScoreAndPersist(ctx, business, batch)
				if err != nil {
					return nil, err
				}

				result := map[string]interface{}{
					"scan_id":  scanID.String(),
					"score_id": score.ScoreID.String(),
					"overall":  score.Overall,
					"analyses": summary.TotalAnalyses,
				}
				if alert != nil {
					result["alert_type"] = string(alert.Type)
					result["alert_severity"] = string(alert.Severity)
					result["alert_message"] = alert.Message

					if alert.Severity == models.SeverityCritical {
						if slackErr := ReportScoreDropToSlack(business.Name, alert); slackErr != nil {
							fmt.Printf("[ProcessScan] Warning: Failed to report alert to Slack: %v\n", slackErr)
						}
					}
				}

				fmt.Printf("[ProcessScan] ✅ Scored scan %s: overall=%d from %d analyses\n",
					scanID, score.Overall, summary.TotalAnalyses)
				return result, nil
			})
			if err != nil {
				reportScanFailure("classify-and-score", businessID, business.Name, err)
				return nil, fmt.Errorf("step 4 failed: %w", err)
			}

			scoreInfo := scoreData.(map[string]interface{})

			// Step 5: Generate Processing Summary
			finalResult, err := step.Run(ctx, "generate-scan-summary", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[ProcessScan] Step 5: Generating scan summary\n")

				result := map[string]interface{}{
					"business_id":       businessID,
					"business_name":     business.Name,
					"scan_id":           scoreInfo["scan_id"],
					"score_id":          scoreInfo["score_id"],
					"overall":           scoreInfo["overall"],
					"total_prompts":     summary.TotalPrompts,
					"total_responses":   summary.TotalResponses,
					"total_analyses":    summary.TotalAnalyses,
					"total_cost":        summary.TotalCost,
					"processing_errors": summary.ProcessingErrors,
					"pipeline_version":  "scan_v1.0",
					"status":            "completed",
				}
				if alertType, ok := scoreInfo["alert_type"]; ok {
					result["alert_type"] = alertType
					result["alert_severity"] = scoreInfo["alert_severity"]
				}

				fmt.Printf("[ProcessScan] 🎉 Scan pipeline completed for business: %s\n", business.Name)
				fmt.Printf("[ProcessScan] 📊 Summary: %d/%d responses analyzed, $%.4f spent\n",
					summary.TotalAnalyses, summary.TotalPrompts, summary.TotalCost)
				return result, nil
			})
			if err != nil {
				return nil, fmt.Errorf("generate summary step failed: %w", err)
			}

			return finalResult, nil
		},
	)

	if err != nil {
		panic(fmt.Sprintf("Failed to create ProcessScan function: %v", err))
	}

	return fn
}

// Step results cross the inngest memoization boundary as JSON, so typed
// values come back as map[string]interface{}. Round-trip them through
// json to recover the concrete types.
func decodeBusiness(data interface{}) (*models.Business, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var business models.Business
	if err := json.Unmarshal(raw, &business); err != nil {
		return nil, err
	}
	return &business, nil
}

func decodeCompetitors(data interface{}) ([]string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Competitors []string `json:"competitors"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload.Competitors, nil
}

func decodePromptResponses(data interface{}, summary *services.ScanSummary) ([]*models.PromptResponse, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Responses []*models.PromptResponse `json:"responses"`
		Summary   *services.ScanSummary    `json:"summary"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	if payload.Summary != nil {
		*summary = *payload.Summary
	}
	return payload.Responses, nil
}

func reportScanFailure(stepName, businessID, businessName string, err error) {
	if slackErr := ReportPipelineFailureToSlack("scan", businessID, businessName, stepName, err); slackErr != nil {
		fmt.Printf("[ProcessScan] Warning: Failed to report failure to Slack: %v\n", slackErr)
	}
}
