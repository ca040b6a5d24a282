package viewer

import (
	"errors"
	"fmt"

	"teraview/internal/httputil"
	"teraview/internal/terabox"
)

// Explain turns an action error into a short message for people.
func Explain(err error) string {
	var reqErr *terabox.RequestError
	var statusErr *httputil.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, terabox.ErrInvalidInput):
		return "Invalid TeraBox URL"
	case errors.As(err, &reqErr):
		return fmt.Sprintf("API request failed (status %d)", reqErr.Status)
	case errors.Is(err, terabox.ErrNoLink):
		return "No direct link found for this share"
	case errors.Is(err, terabox.ErrParse):
		return "Unexpected response from the resolution service"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Media host answered with status %d", statusErr.Code)
	default:
		return err.Error()
	}
}
