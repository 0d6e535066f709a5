package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

// HTTPClient registers and deregisters the service against engine REST APIs.
type HTTPClient struct {
	httpc *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{
		httpc: &http.Client{Timeout: 15 * time.Second},
	}
}

// Announce POSTs the service descriptor to {engine}/services.
func (c *HTTPClient) Announce(ctx context.Context, engineURL string, desc domain.ServiceDescriptor) error {
	payload, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, engineURL+"/services", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("announce %s: status %d: %s", engineURL, resp.StatusCode, string(body))
	}
	return nil
}

// Withdraw DELETEs the service registration. A 404 counts as success; the
// engine already forgot us.
func (c *HTTPClient) Withdraw(ctx context.Context, engineURL string, desc domain.ServiceDescriptor) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, engineURL+"/services/"+desc.Slug, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("withdraw %s: status %d: %s", engineURL, resp.StatusCode, string(body))
	}
	return nil
}
