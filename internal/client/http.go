package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// errNotFound is mapped by each client to its own domain sentinel.
var errNotFound = errors.New("resource not found")

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// getJSON performs a GET and decodes a 2xx body into out. Transport failures, timeouts and
// 5xx answers are reported as ErrDependencyUnavailable.
func getJSON(ctx context.Context, httpClient *http.Client, url string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", domain.ErrDependencyUnavailable, url, err)
	}
	defer response.Body.Close()

	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrDependencyUnavailable, url, err)
	}

	switch {
	case response.StatusCode >= 200 && response.StatusCode < 300:
		if err := json.Unmarshal(responseBodyBytes, out); err != nil {
			return fmt.Errorf("decode %s: %w", url, err)
		}
		return nil
	case response.StatusCode == http.StatusNotFound:
		return errNotFound
	case response.StatusCode >= 500 || response.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: GET %s: status %d", domain.ErrDependencyUnavailable, url, response.StatusCode)
	}

	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("GET %s: status %d: %s", url, response.StatusCode, errResp.Error)
	}
	return fmt.Errorf("GET %s: status %d", url, response.StatusCode)
}
