package makerworld

import (
	"context"
	"errors"
	"fmt"

	"github.com/chapmanwm/printsync-web/internal/adapter"
)

const PROVIDER_NAME = "makerworld"

var ErrNoToken = errors.New("no MakerWorld token provided")

// AMSSlot represents a single AMS filament slot entry on a print task
type AMSSlot struct {
	FilamentType *string  `json:"filamentType"`
	TargetColor  *string  `json:"targetColor"`
	Weight       *float64 `json:"weight"`
}

// Task represents a print task from the MakerWorld task history API
type Task struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Cover            *string   `json:"cover"`
	Status           int       `json:"status"`
	StartTime        *string   `json:"startTime"`
	EndTime          *string   `json:"endTime"`
	Weight           *float64  `json:"weight"`
	AMSDetailMapping []AMSSlot `json:"amsDetailMapping"`
}

// tasksResponse represents the response from the task history endpoint
type tasksResponse struct {
	Hits []Task `json:"hits"`
}

// Client defines the interface for MakerWorld client operations to enable mocking
type Client interface {
	// ListTasks fetches the authenticated user's print task history
	ListTasks(ctx context.Context) ([]Task, error)
}

// MakerWorldClient implements MakerWorld client
type MakerWorldClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
	token      string
	limit      int
}

// NewClient creates a new MakerWorld client. The token is the session cookie
// value issued after logging in to makerworld.com.
func NewClient(httpClient adapter.HTTPClient, apiURL string, token string, limit int) Client {
	return &MakerWorldClient{
		httpClient: httpClient,
		apiURL:     apiURL,
		token:      token,
		limit:      limit,
	}
}

// ListTasks fetches the authenticated user's print task history
func (c *MakerWorldClient) ListTasks(ctx context.Context) ([]Task, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	url := fmt.Sprintf("%s?limit=%d", c.apiURL, c.limit)

	// MakerWorld authenticates via a session cookie and rejects requests
	// missing its web client headers
	headers := map[string]string{
		"Cookie":               fmt.Sprintf("token=%s", c.token),
		"Referer":              "https://makerworld.com/en/studio/print-history",
		"Content-Type":         "application/json",
		"x-bbl-app-source":     "makerworld",
		"x-bbl-client-name":    "MakerWorld",
		"x-bbl-client-type":    "web",
		"x-bbl-client-version": "00.00.00.01",
	}

	var response tasksResponse
	if err := c.httpClient.Get(ctx, url, headers, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch MakerWorld tasks: %w", err)
	}

	return response.Hits, nil
}
