package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
	"github.com/Sternrassler/nasa-explorer-client/pkg/neo"
	"github.com/Sternrassler/nasa-explorer-client/pkg/query"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes the data of a successful result, or returns its error.
func printResult[T any](cmd *cobra.Command, res query.Result[T]) error {
	if res.Err != nil {
		return res.Err
	}
	return printJSON(cmd.OutOrStdout(), res.Data)
}

func (c *cli) apodCmd() *cobra.Command {
	var p nasa.APODParams

	cmd := &cobra.Command{
		Use:   "apod",
		Short: "Astronomy Picture of the Day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.explorer.APOD(cmd.Context(), p))
		},
	}

	cmd.Flags().StringVar(&p.Date, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.StartDate, "start-date", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.EndDate, "end-date", "", "range end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&p.Count, "count", 0, "number of random entries")
	cmd.Flags().BoolVar(&p.Thumbs, "thumbs", false, "include video thumbnails")
	return cmd
}

func (c *cli) marsCmd() *cobra.Command {
	var p nasa.MarsPhotosParams
	var sol int

	cmd := &cobra.Command{
		Use:   "mars",
		Short: "Mars rover photos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sol") {
				p.Sol = nasa.Sol(sol)
			}
			return printResult(cmd, c.app.explorer.MarsPhotos(cmd.Context(), p))
		},
	}

	cmd.Flags().StringVar(&p.Rover, "rover", "curiosity", "rover name")
	cmd.Flags().IntVar(&sol, "sol", 0, "martian sol")
	cmd.Flags().StringVar(&p.EarthDate, "earth-date", "", "earth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.Camera, "camera", "", "camera abbreviation, e.g. FHAZ")
	cmd.Flags().IntVar(&p.Page, "page", 0, "result page")
	return cmd
}

func (c *cli) roversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rovers",
		Short: "Mars rover missions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.explorer.MarsRovers(cmd.Context()))
		},
	}
}

func (c *cli) neoCmd() *cobra.Command {
	var start, end string
	var list bool

	cmd := &cobra.Command{
		Use:   "neo",
		Short: "Near-earth object summary",
		Long: `Summarizes near-earth objects approaching between --start-date and
--end-date (default: the last 7 days). Ranges longer than 7 days are
fetched as consecutive 7-day windows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := neoRange(start, end, time.Now())
			if err != nil {
				return err
			}

			var feed map[string][]nasa.NEOObject
			if neo.SpanDays(rng.Start, rng.End) > neo.MaxSpanDays {
				feed, err = c.app.explorer.NEORange(cmd.Context(), rng.Start, rng.End)
				if err != nil {
					return err
				}
			} else {
				res := c.app.explorer.NEOs(cmd.Context(), rng.Params())
				if res.Err != nil {
					return res.Err
				}
				feed = res.Data.NearEarthObjects
			}

			if list {
				return printJSON(cmd.OutOrStdout(), neo.AllAsteroids(feed))
			}
			return printJSON(cmd.OutOrStdout(), neo.Summarize(feed))
		},
	}

	cmd.Flags().StringVar(&start, "start-date", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end-date", "", "range end (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&list, "list", false, "print the objects instead of the summary")
	return cmd
}

// neoRange resolves the flag values against the default 7-day window.
func neoRange(start, end string, now time.Time) (neo.DateRange, error) {
	rng := neo.DefaultDateRange(now)
	if start != "" {
		d, err := nasa.ParseDate(start)
		if err != nil {
			return rng, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		rng.Start = d
	}
	if end != "" {
		d, err := nasa.ParseDate(end)
		if err != nil {
			return rng, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		rng.End = d
	}
	if rng.Start.After(rng.End) {
		return rng, fmt.Errorf("%s", neo.WarningStartAfter)
	}
	return rng, nil
}

func (c *cli) searchCmd() *cobra.Command {
	var p nasa.SearchParams

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the NASA Image and Video Library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Q = strings.Join(args, " ")
			data, err := c.app.explorer.NewSearch(nil).Do(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&p.MediaType, "media-type", "", "image, video or audio")
	cmd.Flags().StringVar(&p.YearStart, "year-start", "", "earliest year")
	cmd.Flags().StringVar(&p.YearEnd, "year-end", "", "latest year")
	cmd.Flags().IntVar(&p.Page, "page", 0, "result page")
	return cmd
}

func (c *cli) epicCmd() *cobra.Command {
	var p nasa.EPICParams

	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Earth Polychromatic Imaging Camera frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.explorer.EPIC(cmd.Context(), p))
		},
	}

	cmd.Flags().StringVar(&p.Date, "date", "", "date (YYYY-MM-DD)")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Aggregate statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.explorer.Stats(cmd.Context()))
		},
	}
}

func (c *cli) newsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "news",
		Short: "Recent NASA news",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.explorer.News(cmd.Context()))
		},
	}
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, c.app.explorer.Health(cmd.Context()))
		},
	}
}
