package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrBody bounds how much of an error response is kept for logs.
const maxErrBody = 2048

// postJSON sends body to url and decodes a 200 response into out. Non-2xx
// statuses and undecodable bodies come back as *SoftError.
func postJSON(ctx context.Context, hc *http.Client, backend, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &SoftError{
			Backend: backend,
			Kind:    SoftStatus,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s", strings.TrimSpace(string(msg))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SoftError{Backend: backend, Kind: SoftDecode, Err: err}
	}
	return nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
