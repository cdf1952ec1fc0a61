package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

// IsRateLimited returns true if the error indicates rate limiting or an
// exhausted daily quota.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapError converts a Google API error into a domain error.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("google search: %w: %s", domain.ErrRateLimited, gerr.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("google search: %w: %s", domain.ErrSearchUnavailable, gerr.Message)
	default:
		return fmt.Errorf("google search: %w", err)
	}
}
