package countries

import (
	"context"
	"strings"

	"github.com/joefazee/countrylookup/internal/validator"
	"github.com/joefazee/countrylookup/models"
)

const maxNameRunes = 100

type service struct {
	lookup   Lookup
	renderer *Renderer
}

// NewService creates a new country service
func NewService(lookup Lookup, renderer *Renderer) Service {
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &service{lookup: lookup, renderer: renderer}
}

func (s *service) FindByName(ctx context.Context, name string) ([]models.Country, error) {
	if !validator.NotBlank(name) || !validator.MaxRunes(name, maxNameRunes) {
		return nil, models.ErrInvalidCountryName
	}
	return s.lookup.SearchByName(ctx, name)
}

func (s *service) FindByCode(ctx context.Context, code string) ([]models.Country, error) {
	code = strings.TrimSpace(code)
	if !validator.IsCountryCode(code) {
		return nil, models.ErrInvalidCountryCode
	}
	return s.lookup.SearchByCode(ctx, strings.ToUpper(code))
}

func (s *service) Render(countries []models.Country, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return s.renderer.Markdown(countries), nil
	case FormatHTML:
		return s.renderer.HTML(countries)
	default:
		return "", ErrUnsupportedFormat
	}
}
