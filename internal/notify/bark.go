package notify

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	barkAPIURL = "https://api.day.app"
)

// BarkService pushes sync failures to a Bark device
type BarkService struct {
	client    *http.Client
	baseURL   string
	key       string
	isEnabled bool
}

// NewBarkService creates a Bark notifier; it is disabled when key is empty
func NewBarkService(key string) *BarkService {
	return &BarkService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   barkAPIURL,
		key:       key,
		isEnabled: key != "",
	}
}

// SendNotification sends a Bark notification
func (b *BarkService) SendNotification(title, content string) error {
	if !b.isEnabled {
		return nil
	}

	// Build URL: https://api.day.app/{key}/{title}/{content}
	barkURL := fmt.Sprintf("%s/%s/%s/%s", b.baseURL, url.PathEscape(b.key),
		url.PathEscape(title), url.PathEscape(content))

	req, err := http.NewRequest(http.MethodGet, barkURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// NotifySyncFailure reports a failed scheduled sync
func (b *BarkService) NotifySyncFailure(runID string, err error) error {
	if !b.isEnabled {
		return nil
	}

	content := fmt.Sprintf("Data sync failed: %v (run %s)", err, runID)
	if sendErr := b.SendNotification("Price tracker sync failed", content); sendErr != nil {
		return sendErr
	}

	log.Printf("[Bark] sync failure notification sent for run %s", runID)
	return nil
}
