package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// APIClient is the default Gateway: it posts turns to the backend's
// POST /api/chat endpoint as a multipart form.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a gateway client for the given backend base URL
// (for example "http://localhost:5000").
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		// The send path has no application-level timeout; the transport-level
		// one guards against a hung connection.
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Send posts one turn and returns the assistant reply.
func (c *APIClient) Send(ctx context.Context, req SendRequest) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("sessionId", req.SessionID); err != nil {
		return "", fmt.Errorf("widget: build form: %w", err)
	}
	if err := writer.WriteField("scenario", req.Scenario); err != nil {
		return "", fmt.Errorf("widget: build form: %w", err)
	}
	if err := writer.WriteField("message", req.Message); err != nil {
		return "", fmt.Errorf("widget: build form: %w", err)
	}

	if req.Image != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, req.Image.Name))
		header.Set("Content-Type", req.Image.Mime)
		part, err := writer.CreatePart(header)
		if err != nil {
			return "", fmt.Errorf("widget: build image part: %w", err)
		}
		if _, err := part.Write(req.Image.Data); err != nil {
			return "", fmt.Errorf("widget: write image part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("widget: finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", body)
	if err != nil {
		return "", fmt.Errorf("widget: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("widget: chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			return "", fmt.Errorf("widget: chat request rejected (%d): %s", resp.StatusCode, payload.Error)
		}
		return "", fmt.Errorf("widget: chat request rejected with status %d", resp.StatusCode)
	}

	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("widget: decode reply: %w", err)
	}
	return payload.Reply, nil
}
