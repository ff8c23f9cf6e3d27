package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/chapmanwm/printsync-web/internal/adapter"
	"github.com/chapmanwm/printsync-web/internal/api/shared/dto"
)

// IngestClient defines the interface for pushing scraped prints into the API
type IngestClient interface {
	// SubmitPrints upserts a batch of prints and returns the accepted count
	SubmitPrints(ctx context.Context, prints []dto.PrintInput) (int, error)

	// UploadCover stores a cover image for a print and returns its serving URL
	UploadCover(ctx context.Context, printID string, data []byte) (string, error)
}

// httpIngestClient implements IngestClient over the REST API
type httpIngestClient struct {
	httpClient adapter.HTTPClient
	apiURL     string
	apiKey     string
}

// NewIngestClient creates an ingest client for the API at apiURL,
// authenticating with the shared API key
func NewIngestClient(httpClient adapter.HTTPClient, apiURL string, apiKey string) IngestClient {
	return &httpIngestClient{
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
	}
}

// SubmitPrints upserts a batch of prints and returns the accepted count
func (c *httpIngestClient) SubmitPrints(ctx context.Context, prints []dto.PrintInput) (int, error) {
	payload, err := json.Marshal(prints)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal prints: %w", err)
	}

	headers := map[string]string{
		"X-API-Key": c.apiKey,
	}

	respBody, err := c.httpClient.Post(ctx, c.apiURL+"/prints", "application/json", headers, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to submit prints: %w", err)
	}

	var result dto.IngestResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("failed to decode ingest response: %w", err)
	}

	return result.Count, nil
}

// UploadCover stores a cover image for a print and returns its serving URL
func (c *httpIngestClient) UploadCover(ctx context.Context, printID string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "cover")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	headers := map[string]string{
		"X-API-Key": c.apiKey,
	}

	url := fmt.Sprintf("%s/prints/%s/cover", c.apiURL, printID)
	respBody, err := c.httpClient.Post(ctx, url, writer.FormDataContentType(), headers, &body)
	if err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}

	var result dto.CoverUploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode cover response: %w", err)
	}

	return result.URL, nil
}
