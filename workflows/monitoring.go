// workflows/monitoring.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
)

// weekOrder fixes the reporting order. The scheduler's DOW column is
// Monday-zero, matching GetBusinessCountByWeekday's keys.
var weekOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// promptsPerScan is the size of the default prompt matrix per business.
const promptsPerScan = 3

// WeeklyLoadAnalyzer reports how scheduled scans spread across the week
// and how many AI platform calls each day costs, so scan days can be
// rebalanced before a single weekday starts pressing provider rate limits.
func (p *ScheduledProcessor) WeeklyLoadAnalyzer() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "weekly-load-analyzer",
			Name: "Analyze Weekly Scan Load Distribution",
		},
		inngestgo.CronTrigger("0 0 * * 0"), // Every Sunday at midnight
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			distribution, err := step.Run(ctx, "get-weekday-distribution", func(ctx context.Context) (map[string]int, error) {
				return p.scanService.GetBusinessCountByWeekday(ctx)
			})
			if err != nil {
				return nil, err
			}

			var total int
			for _, count := range distribution {
				total += count
			}
			if total == 0 {
				return map[string]interface{}{
					"total_businesses": 0,
					"message":          "No businesses have a scheduled scan day yet",
				}, nil
			}

			// Every scanned business costs one prompt matrix: prompts x
			// configured platform models.
			callsPerScan := promptsPerScan * len(p.cfg.ScanModels)
			dailyLoad := make([]map[string]interface{}, 0, len(weekOrder))
			for _, day := range weekOrder {
				dailyLoad = append(dailyLoad, map[string]interface{}{
					"day":                day,
					"businesses":         distribution[day],
					"estimated_ai_calls": distribution[day] * callsPerScan,
				})
			}

			peakDay, quietDay, moveCount := rebalancePlan(distribution)
			recommendation := "Scan load is evenly spread across the week"
			if moveCount > 0 {
				recommendation = fmt.Sprintf("Move %d businesses from %s to %s to even out provider load",
					moveCount, peakDay, quietDay)
			}

			return map[string]interface{}{
				"total_businesses": total,
				"calls_per_scan":   callsPerScan,
				"daily_load":       dailyLoad,
				"peak_day":         peakDay,
				"quietest_day":     quietDay,
				"recommendation":   recommendation,
			}, nil
		},
	)

	if err != nil {
		// Log error
		fmt.Printf("Failed to create weekly load analyzer function: %v\n", err)
	}

	return fn
}

// rebalancePlan proposes how many businesses to reschedule from the
// busiest scan day onto the quietest one. Ties resolve to the earliest
// weekday; a spread of one business is noise and yields no move.
func rebalancePlan(distribution map[string]int) (peakDay, quietDay string, moveCount int) {
	peakDay, quietDay = weekOrder[0], weekOrder[0]
	for _, day := range weekOrder {
		if distribution[day] > distribution[peakDay] {
			peakDay = day
		}
		if distribution[day] < distribution[quietDay] {
			quietDay = day
		}
	}

	spread := distribution[peakDay] - distribution[quietDay]
	if spread <= 1 {
		return peakDay, quietDay, 0
	}
	return peakDay, quietDay, spread / 2
}
