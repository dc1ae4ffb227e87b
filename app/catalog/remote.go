package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// PageResponse is the wire shape of GET /api/pages/:page.
type PageResponse struct {
	Page    int      `json:"page"`
	Records []Record `json:"records"`
}

// Remote pages through another instance's page endpoint.
type Remote struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewRemote(baseURL string, httpClient *http.Client, userAgent string) *Remote {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (r *Remote) FetchPage(ctx context.Context, page int) ([]Record, error) {
	if page < 0 {
		return nil, ErrInvalidPage
	}

	url := fmt.Sprintf("%s/api/pages/%d", r.baseURL, page)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &FetchError{Page: page, Kind: KindNetwork, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, contextError(page, ctxErr)
		}
		return nil, &FetchError{Page: page, Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Page: page, Kind: KindNetwork, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	var body PageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{Page: page, Kind: KindNetwork, Err: fmt.Errorf("failed to decode response body: %w", err)}
	}

	return body.Records, nil
}

func classifyTransport(err error) ErrorKind {
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
