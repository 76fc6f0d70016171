package countries

import (
	"context"

	"github.com/joefazee/countrylookup/models"
)

// Lookup fetches country records from the remote API. Errors are classified as
// models.ErrRequestFailed, *models.StatusError or models.ErrDecodingFailed.
type Lookup interface {
	SearchByName(ctx context.Context, name string) ([]models.Country, error)
	SearchByCode(ctx context.Context, code string) ([]models.Country, error)
}

// Service defines the country lookup operations exposed over HTTP and the CLI
type Service interface {
	FindByName(ctx context.Context, name string) ([]models.Country, error)
	FindByCode(ctx context.Context, code string) ([]models.Country, error)
	Render(countries []models.Country, format Format) (string, error)
}
