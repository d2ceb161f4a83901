package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const dateLayout = "2006-01-02"

// decodeBody rejects unknown fields and runs struct validation.
func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidArgument, err)
	}
	return validate.Struct(dst)
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidArgument, name)
	}
	return v, nil
}

func queryPage(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// queryDate accepts a calendar date interpreted in loc or an RFC 3339 timestamp.
func queryDate(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", domain.ErrInvalidArgument, name)
	}
	return &t, nil
}

func queryPeriod(r *http.Request, loc *time.Location) (domain.DateRange, error) {
	start, err := queryDate(r, "start", loc)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := queryDate(r, "end", loc)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.DateRange{Start: start, End: end}, nil
}
