package countries

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/joefazee/countrylookup/models"
)

// Describe returns the user-facing message for a lookup failure.
func Describe(err error) string {
	if code, ok := models.StatusCodeOf(err); ok {
		if code == http.StatusNotFound {
			return "No countries found."
		}
		return fmt.Sprintf("Error: %d", code)
	}
	switch {
	case errors.Is(err, models.ErrRequestFailed):
		return "Network request failed. Please try again."
	default:
		return "Failed to decode response."
	}
}

// ErrUnsupportedFormat is returned by Render for formats that are not documents.
var ErrUnsupportedFormat = errors.New("unsupported render format")
