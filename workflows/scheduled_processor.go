// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/tomhenman/trustable/internal/config"
	"github.com/tomhenman/trustable/services"
)

type ScheduledProcessor struct {
	cfg         *config.Config
	scanService services.ScanService
	client      inngestgo.Client
}

func NewScheduledProcessor(cfg *config.Config, scanService services.ScanService) *ScheduledProcessor {
	return &ScheduledProcessor{
		cfg:         cfg,
		scanService: scanService,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

func (p *ScheduledProcessor) DailyScanProcessor() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "daily-scan-processor",
			Name: "Daily Scan Processor - Weekly Cycle",
		},
		inngestgo.CronTrigger("0 2 * * *"), // Every day at 2 AM UTC
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {

			// Monday is zero
			// Go's logic: Sunday=0, Monday=1, ... Saturday=6
			// Conversion: (time.Now().Weekday() + 6) % 7
			now := time.Now()
			dayOfWeek := (now.Weekday() + 6) % 7

			// Step 1: Get businesses scheduled for this day of the week
			businessIDs, err := step.Run(ctx, "get-scheduled-businesses", func(ctx context.Context) ([]uuid.UUID, error) {
				return p.scanService.GetBusinessIDsByScheduledDOW(ctx, int(dayOfWeek))
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get scheduled businesses for DOW %d: %w", dayOfWeek, err)
			}

			if len(businessIDs) == 0 {
				return map[string]interface{}{
					"execution_date":         now.Format("2006-01-02"),
					"weekday":                now.Weekday().String(),
					"dow_value":              dayOfWeek,
					"total_businesses_found": 0,
					"message":                fmt.Sprintf("No businesses scheduled for %s (DOW %d)", now.Weekday().String(), dayOfWeek),
				}, nil
			}

			// Step 2: Loop over each business and trigger an idempotent step-run for each.
			// This ensures if the workflow fails, it only retries sends that didn't complete.
			for _, businessID := range businessIDs {
				// Create a unique step name for each business
				stepName := fmt.Sprintf("trigger-scan-%s", businessID.String())

				// This step.Run is now *inside* the loop and is idempotent per-business
				_, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					evt := inngestgo.Event{
						Name: "scan.process",
						Data: map[string]interface{}{
							"business_id":  businessID.String(),
							"triggered_by": "automatic_scheduler",
						},
					}
					// Send the single event
					return p.client.Send(ctx, evt)
				})

				if err != nil {
					// Log the error but continue processing other businesses
					fmt.Printf("Warning: Failed to send event for business %s: %v\n", businessID.String(), err)
					// Do not return the error, to allow other businesses to process
				}
			}

			return map[string]interface{}{
				"execution_date":         now.Format("2006-01-02"),
				"weekday":                now.Weekday().String(),
				"dow_value":              dayOfWeek,
				"total_businesses_found": len(businessIDs),
				"businesses_processed":   businessIDs,
				"message":                fmt.Sprintf("Triggered %d scan pipelines for %s (DOW %d)", len(businessIDs), now.Weekday().String(), dayOfWeek),
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create daily scan processor function: %v\n", err)
	}

	return fn
}
