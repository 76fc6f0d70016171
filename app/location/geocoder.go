package location

import (
	"context"
	"errors"
	"sync"

	"github.com/andreiashu/geobed"
)

// ErrNoPlacemark is returned when a coordinate maps to no known place.
var ErrNoPlacemark = errors.New("no placemark for coordinate")

// Geocoder turns a coordinate into an ISO 3166-1 alpha-2 country code
type Geocoder interface {
	CountryCode(ctx context.Context, c Coordinate) (string, error)
}

// GeobedGeocoder reverse-geocodes offline against the geobed city dataset. The
// dataset is loaded on first use because it takes a few seconds.
type GeobedGeocoder struct {
	dataDir  string
	cacheDir string

	once sync.Once
	db   *geobed.GeoBed
	err  error
}

// NewGeobedGeocoder uses the shared default dataset when both dirs are empty.
func NewGeobedGeocoder(dataDir, cacheDir string) *GeobedGeocoder {
	return &GeobedGeocoder{dataDir: dataDir, cacheDir: cacheDir}
}

func (g *GeobedGeocoder) load() (*geobed.GeoBed, error) {
	g.once.Do(func() {
		if g.dataDir == "" && g.cacheDir == "" {
			g.db, g.err = geobed.GetDefaultGeobed()
			return
		}
		var opts []geobed.Option
		if g.dataDir != "" {
			opts = append(opts, geobed.WithDataDir(g.dataDir))
		}
		if g.cacheDir != "" {
			opts = append(opts, geobed.WithCacheDir(g.cacheDir))
		}
		g.db, g.err = geobed.NewGeobed(opts...)
	})
	return g.db, g.err
}

// CountryCode returns the country of the nearest known city.
func (g *GeobedGeocoder) CountryCode(ctx context.Context, c Coordinate) (string, error) {
	type result struct {
		code string
		err  error
	}
	out := make(chan result, 1)

	go func() {
		db, err := g.load()
		if err != nil {
			out <- result{err: err}
			return
		}
		city := db.ReverseGeocode(c.Latitude, c.Longitude)
		if city.City == "" || city.Country() == "" {
			out <- result{err: ErrNoPlacemark}
			return
		}
		out <- result{code: city.Country()}
	}()

	select {
	case r := <-out:
		return r.code, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
