package workflows

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tomhenman/trustable/internal/models"
)

type SlackPayload struct {
	Text string `json:"text"`
}

// ReportErrorToSlack posts an error message to the scan-pipeline-alerts channel.
func ReportErrorToSlack(err error) error {
	if err == nil {
		return nil
	}

	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		return errors.New("SLACK_WEBHOOK_URL environment variable is not set")
	}

	message := fmt.Sprintf(
		":rotating_light: *Scan Pipeline Error*\n"+
			"*Time:* %s\n"+
			"*Error:* ```%s```",
		time.Now().UTC().Format(time.RFC3339),
		err.Error(),
	)

	return postToSlack(webhookURL, message)
}

// ReportPipelineFailureToSlack reports pipeline failures with context.
func ReportPipelineFailureToSlack(pipeline, businessID, businessName, reason string, err error) error {
	if err == nil {
		return nil
	}

	if businessName == "" {
		businessName = "unknown"
	}
	if pipeline == "" {
		pipeline = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}

	reportErr := fmt.Errorf(
		"pipeline failed: pipeline=%s reason=%s business_id=%s business_name=%s error=%v",
		pipeline,
		reason,
		businessID,
		businessName,
		err,
	)

	return ReportErrorToSlack(reportErr)
}

// ReportScoreDropToSlack notifies the channel when a scan detects a
// critical score drop for a business.
func ReportScoreDropToSlack(businessName string, alert *models.Alert) error {
	if alert == nil {
		return nil
	}

	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")
	if webhookURL == "" {
		return errors.New("SLACK_WEBHOOK_URL environment variable is not set")
	}

	message := fmt.Sprintf(
		":chart_with_downwards_trend: *Score Drop Detected*\n"+
			"*Business:* %s\n"+
			"*Severity:* %s\n"+
			"*Overall:* %d → %d (%+d)\n"+
			"*Detail:* %s",
		businessName,
		alert.Severity,
		alert.PreviousOverall,
		alert.CurrentOverall,
		alert.Delta,
		alert.Message,
	)

	return postToSlack(webhookURL, message)
}

func postToSlack(webhookURL, message string) error {
	payload := SlackPayload{
		Text: message,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}
