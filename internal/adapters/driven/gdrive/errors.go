package gdrive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/atelier-labs/docmill/internal/core/domain"
)

// classify wraps an API failure in a *domain.ProviderError tagged
// transient or permanent. Rate limits and server errors are transient;
// 401 responses surface as domain.ErrAuthRequired; everything else with
// an HTTP status is permanent. Failures without a status reached no
// server and are worth retrying.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized:
			return &domain.ProviderError{
				Op:  op,
				Err: fmt.Errorf("%w: %v", domain.ErrAuthRequired, err),
			}
		case gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError:
			return &domain.ProviderError{Op: op, Transient: true, Err: err}
		default:
			return &domain.ProviderError{Op: op, Err: err}
		}
	}

	return &domain.ProviderError{Op: op, Transient: true, Err: err}
}

// isRateLimited reports whether the error is a 429 response.
func isRateLimited(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}
