package google

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/syncdex/internal/core/domain"
)

// WrapError converts a Google API error to the matching domain error so the
// sync pipeline can classify it without knowing about HTTP. Server-side
// failures (5xx) are marked transient for retry.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch {
	case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
		return domain.ErrPermissionDenied
	case gerr.Code == http.StatusNotFound:
		return domain.ErrNotFound
	case gerr.Code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case gerr.Code == http.StatusGone:
		return domain.ErrDeltaExpired
	case gerr.Code >= 500:
		return domain.Transient(err)
	default:
		return err
	}
}

// IsRateLimited returns true if the error indicates rate limiting.
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
