package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/app/search"
	"github.com/joefazee/countrylookup/models"
)

const settleTimeout = 30 * time.Second

// runtime carries what the commands need, so tests can swap the network out.
type runtime struct {
	service        countries.Service
	geocoder       location.Geocoder
	newCoordinator func() (*search.Coordinator, error)
	stdin          io.Reader
	stdout         io.Writer
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(rt *runtime) *cli.App {
	app := &cli.App{
		Name:      "countrylookup",
		Usage:     "Look up countries by name, code or position",
		Version:   Version,
		Writer:    rt.stdout,
		ErrWriter: rt.stdout,
		Commands: []*cli.Command{
			searchCmd(rt),
			codeCmd(rt),
			locateCmd(rt),
			interactiveCmd(rt),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|markdown|html"}
}

func searchCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search countries by name",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("a country name is required")
			}
			result, err := rt.service.FindByName(c.Context, strings.Join(c.Args().Slice(), " "))
			return rt.output(c, result, err)
		},
	}
}

func codeCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "code",
		Usage:     "Look up a country by its 2 or 3 letter code",
		ArgsUsage: "<code>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("exactly one country code is required")
			}
			result, err := rt.service.FindByCode(c.Context, c.Args().First())
			return rt.output(c, result, err)
		},
	}
}

func locateCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "locate",
		Usage: "Look up the country containing a position",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "lat", Usage: "Latitude", Required: true},
			&cli.Float64Flag{Name: "lng", Usage: "Longitude", Required: true},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			coord := location.Coordinate{Latitude: c.Float64("lat"), Longitude: c.Float64("lng")}
			if !coord.Valid() {
				return models.ErrInvalidCoordinate
			}
			code, err := rt.geocoder.CountryCode(c.Context, coord)
			if err != nil {
				return fmt.Errorf("reverse geocoding failed: %w", err)
			}
			result, err := rt.service.FindByCode(c.Context, code)
			return rt.output(c, result, err)
		},
	}
}

func interactiveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:    "interactive",
		Aliases: []string{"i"},
		Usage:   "Search and keep a list of favorite countries",
		Action: func(c *cli.Context) error {
			coordinator, err := rt.newCoordinator()
			if err != nil {
				return err
			}
			defer coordinator.Close()
			return repl(c.Context, coordinator, rt.stdin, rt.stdout)
		},
	}
}

func (rt *runtime) output(c *cli.Context, result []models.Country, err error) error {
	if err != nil {
		if errors.Is(err, models.ErrInvalidCountryName) || errors.Is(err, models.ErrInvalidCountryCode) {
			return err
		}
		return errors.New(countries.Describe(err))
	}

	format, ok := countries.ParseFormat(c.String("format"))
	if !ok {
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
	if format == countries.FormatJSON {
		enc := json.NewEncoder(rt.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(countries.ToCountryResponseList(result))
	}

	doc, err := rt.service.Render(result, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(rt.stdout, doc)
	return err
}

const replHelp = `Type a country name to search. Commands:
  :add N       add search result N to favorites
  :rm N [M..]  remove favorites
  :dismiss     dismiss the alert
  :fav         show favorites
  :quit        exit`

// repl drives a coordinator from line input. Each query waits for its search to
// settle before the next line is read.
func repl(ctx context.Context, coordinator *search.Coordinator, in io.Reader, out io.Writer) error {
	updates, cancel := coordinator.Subscribe()
	defer cancel()

	fmt.Fprintln(out, replHelp)
	coordinator.AutoAddCountryBasedOnLocation(ctx)
	printSnapshot(out, coordinator.Snapshot())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		quit, err := execute(ctx, coordinator, updates, line, out)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		if quit {
			return nil
		}
	}
}

func execute(ctx context.Context, coordinator *search.Coordinator, updates <-chan search.Snapshot, line string, out io.Writer) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		drain(updates)
		if err := coordinator.SetSearchText(line); err != nil {
			return true, err
		}
		snap := coordinator.Snapshot()
		if line != "" {
			snap = awaitSettled(ctx, updates, snap)
		}
		printSnapshot(out, snap)
		return false, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true, nil
	case ":help":
		fmt.Fprintln(out, replHelp)
	case ":fav":
		printFavorites(out, coordinator.Snapshot().Favorites)
	case ":dismiss":
		if err := coordinator.DismissAlert(); err != nil {
			return true, err
		}
		printSnapshot(out, coordinator.Snapshot())
	case ":add":
		if len(fields) != 2 {
			return false, errors.New("usage: :add N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, err
		}
		snap := coordinator.Snapshot()
		if snap.State.Phase != search.PhaseSuccess || n < 1 || n > len(snap.State.Results) {
			return false, models.ErrInvalidIndex
		}
		if err := coordinator.AddCountry(snap.State.Results[n-1]); err != nil {
			return true, err
		}
		printSnapshot(out, coordinator.Snapshot())
	case ":rm":
		if len(fields) < 2 {
			return false, errors.New("usage: :rm N [M...]")
		}
		offsets := make([]int, 0, len(fields)-1)
		for _, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return false, err
			}
			offsets = append(offsets, n-1)
		}
		if coordinator.RemoveCountry(offsets...) == 0 {
			return false, models.ErrInvalidIndex
		}
		printFavorites(out, coordinator.Snapshot().Favorites)
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

// awaitSettled waits for the first change after current that is not a running
// search, or for an alert.
func awaitSettled(ctx context.Context, updates <-chan search.Snapshot, current search.Snapshot) search.Snapshot {
	timeout := time.NewTimer(settleTimeout)
	defer timeout.Stop()

	since := current.Version
	for {
		if current.Alert != nil || (current.Version > since && current.State.Phase != search.PhaseSearching) {
			return current
		}
		select {
		case snap, ok := <-updates:
			if !ok {
				return current
			}
			if snap.Version > current.Version {
				current = snap
			}
		case <-timeout.C:
			return current
		case <-ctx.Done():
			return current
		}
	}
}

func drain(updates <-chan search.Snapshot) {
	for {
		select {
		case <-updates:
		default:
			return
		}
	}
}

func printSnapshot(out io.Writer, snap search.Snapshot) {
	if snap.Alert != nil {
		fmt.Fprintf(out, "! %s: %s\n", snap.Alert.Title, snap.Alert.Message)
	}

	switch snap.State.Phase {
	case search.PhaseSearching:
		fmt.Fprintln(out, "searching...")
	case search.PhaseError:
		fmt.Fprintln(out, snap.State.Message)
	case search.PhaseSuccess:
		if len(snap.State.Results) == 0 {
			fmt.Fprintln(out, "No new countries found.")
		}
		for i, country := range snap.State.Results {
			fmt.Fprintf(out, "  %d. %s\n", i+1, describe(country))
		}
	}
	printFavorites(out, snap.Favorites)
}

func printFavorites(out io.Writer, favorites []models.Country) {
	if len(favorites) == 0 {
		fmt.Fprintln(out, "Favorites: none")
		return
	}
	fmt.Fprintln(out, "Favorites:")
	for i, country := range favorites {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, describe(country))
	}
}

func describe(country models.Country) string {
	r := countries.ToCountryResponse(country)
	s := strings.TrimSpace(r.Flag + " " + r.Name)
	if r.Capital != "" {
		s += " (" + r.Capital + ")"
	}
	return s
}
