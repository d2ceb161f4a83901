package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// HTTPIdentityClient talks to the identity service over its REST API.
type HTTPIdentityClient struct {
	Address    string
	httpClient *http.Client
}

func NewHTTPIdentityClient(address string, timeout time.Duration) *HTTPIdentityClient {
	return &HTTPIdentityClient{
		Address:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPIdentityClient) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	var user userResponse
	err := getJSON(ctx, c.httpClient, fmt.Sprintf("%s/users/%s", c.Address, url.PathEscape(userID)), &user)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, err
	}
	if user.ID == "" {
		user.ID = userID
	}
	return &domain.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, nil
}

func (c *HTTPIdentityClient) UserExists(ctx context.Context, userID string) (bool, error) {
	_, err := c.ResolveUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
