package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joefazee/countrylookup/app"
	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/app/reachability"
	"github.com/joefazee/countrylookup/app/search"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/internal/nexus"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := app.LoadConfig(nexus.WithDefaultFileName(".env"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.NewZeroLogger(os.Stderr, logger.ParseLevel(cfg.LogLevel), logger.Fields{"service": "countrylookup-cli"})

	lookup := countries.NewClient(&cfg.Countries, nil, log)
	geocoder := location.NewGeobedGeocoder(cfg.Location.GeocoderDataDir, cfg.Location.GeocoderCacheDir)

	rt := &runtime{
		service:  countries.NewService(lookup, countries.NewRenderer()),
		geocoder: geocoder,
		newCoordinator: func() (*search.Coordinator, error) {
			platform, err := cfg.Location.Platform()
			if err != nil {
				return nil, err
			}
			observer, err := cfg.Reachability.Observer()
			if err != nil {
				return nil, err
			}
			monitor := reachability.NewMonitor(observer, cfg.Reachability.Interval, log)
			monitor.Start(context.Background())

			resolver := location.NewResolver(platform, geocoder, cfg.Location.Timeout, log)
			return search.NewCoordinator(lookup, resolver, nil, &cfg.Search,
				search.WithLogger(log), search.WithMonitor(monitor)), nil
		},
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	if err := newCLIApp(rt).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
