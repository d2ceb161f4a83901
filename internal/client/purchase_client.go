package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type purchaseTotalResponse struct {
	Total decimal.Decimal `json:"total"`
}

// HTTPPurchaseClient reads paid order totals from the order service.
type HTTPPurchaseClient struct {
	Address    string
	httpClient *http.Client
}

func NewHTTPPurchaseClient(address string, timeout time.Duration) *HTTPPurchaseClient {
	return &HTTPPurchaseClient{
		Address:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetPurchaseTotal treats an unknown user as one without purchases.
func (c *HTTPPurchaseClient) GetPurchaseTotal(ctx context.Context, userID string, period domain.DateRange) (decimal.Decimal, error) {
	query := url.Values{}
	if period.Start != nil {
		query.Set("from", period.Start.Format(time.RFC3339))
	}
	if period.End != nil {
		query.Set("to", period.End.Format(time.RFC3339))
	}
	endpoint := fmt.Sprintf("%s/users/%s/purchases/total", c.Address, url.PathEscape(userID))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var resp purchaseTotalResponse
	if err := getJSON(ctx, c.httpClient, endpoint, &resp); err != nil {
		if errors.Is(err, errNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return resp.Total, nil
}
