package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/blockedby/sales-dashboard/internal/client"
	"github.com/blockedby/sales-dashboard/internal/dashboard"
	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/render"
	"github.com/blockedby/sales-dashboard/internal/snapshot"
	"github.com/blockedby/sales-dashboard/internal/web"
)

const (
	chartWidth  = 960
	chartHeight = 480
)

// rangeFlags registers -start and -end and returns the inputs they fill.
func rangeFlags(fs *flag.FlagSet) dashboard.Inputs {
	inputs := dashboard.Inputs{}
	fs.Func("start", "first day, YYYY-MM-DD (optional)", func(v string) error {
		inputs[dashboard.StartDateID] = v
		return nil
	})
	fs.Func("end", "last day, YYYY-MM-DD (optional)", func(v string) error {
		inputs[dashboard.EndDateID] = v
		return nil
	})
	return inputs
}

func newFlagSet(g *globals, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("dashctl "+name, flag.ContinueOnError)
	fs.SetOutput(g.stderr)
	return fs
}

func statusHook() dashboard.Option {
	log := logger.Get().Component("dashctl")
	return dashboard.WithStatusHook(func(s dashboard.Status, err error) {
		if err != nil {
			log.Debug().Err(err).Str("status", s.String()).Msg("refresh")
			return
		}
		log.Debug().Str("status", s.String()).Msg("refresh")
	})
}

// refreshOnce runs one controller refresh and prints the board.
func refreshOnce(ctx context.Context, g *globals, ctrl *dashboard.Controller, board *render.Board, out string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	if err := board.WriteSummary(g.stdout); err != nil {
		return err
	}
	if out == "" {
		return nil
	}

	paths, err := board.WriteFiles(out)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(g.stdout, "wrote", p)
	}
	return nil
}

func runRefresh(ctx context.Context, g *globals, c *client.Client, args []string) error {
	fs := newFlagSet(g, "refresh")
	inputs := rangeFlags(fs)
	out := fs.String("out", "", "directory for chart PNGs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	board := render.NewBoard(chartWidth, chartHeight)
	ctrl := dashboard.New(inputs, c, board, nil, statusHook())
	defer ctrl.Close()

	return refreshOnce(ctx, g, ctrl, board, *out)
}

func runExport(ctx context.Context, g *globals, c *client.Client, args []string) error {
	fs := newFlagSet(g, "export")
	inputs := rangeFlags(fs)
	dir := fs.String("dir", ".", "directory for the CSV file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dl := client.NewDownloader(c, *dir)
	ctrl := dashboard.New(inputs, c, render.NewBoard(chartWidth, chartHeight), dl)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := ctrl.ExportCSV(ctx); err != nil {
		return err
	}

	fmt.Fprintln(g.stdout, dl.LastFile())
	return nil
}

func runWatch(ctx context.Context, g *globals, c *client.Client, args []string) error {
	fs := newFlagSet(g, "watch")
	inputs := rangeFlags(fs)
	out := fs.String("out", "", "directory for chart PNGs, rewritten on every refresh")
	if err := fs.Parse(args); err != nil {
		return err
	}

	board := render.NewBoard(chartWidth, chartHeight)
	ctrl := dashboard.New(inputs, c, board, nil, statusHook())
	defer ctrl.Close()

	if err := refreshOnce(ctx, g, ctrl, board, *out); err != nil {
		return err
	}

	log := logger.Get().Component("dashctl")
	err := c.Watch(ctx, func(e client.Event) {
		if e.Type != web.EventDatasetReloaded {
			return
		}
		fmt.Fprintf(g.stdout, "-- dataset reloaded at %s\n", time.Now().Format(time.TimeOnly))
		// a failed refresh keeps the previous board
		if err := refreshOnce(ctx, g, ctrl, board, *out); err != nil {
			log.Error().Err(err).Msg("refresh after reload")
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runMonths(ctx context.Context, g *globals, c *client.Client, args []string) error {
	fs := newFlagSet(g, "months")
	inputs := rangeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	points, err := c.SalesByMonth(ctx, dashboard.RangeFrom(inputs))
	if err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(g.stdout, "%s: %.2f\n", p.Month, p.TotalSales); err != nil {
			return err
		}
	}
	return nil
}

func runSnapshot(ctx context.Context, g *globals, c *client.Client, args []string) error {
	fs := newFlagSet(g, "snapshot")
	inputs := rangeFlags(fs)
	out := fs.String("o", "dashboard.pdf", "output file, .pdf or .png")
	settle := fs.Duration("settle", snapshot.DefaultSettle, "wait after the charts are drawn")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rng := dashboard.RangeFrom(inputs)
	capturer := snapshot.New(snapshot.WithTimeout(g.timeout), snapshot.WithSettle(*settle))
	if err := capturer.CaptureToFile(ctx, c.URL(rng.Target("/")), *out); err != nil {
		return err
	}

	fmt.Fprintln(g.stdout, *out)
	return nil
}

func runStatus(ctx context.Context, g *globals, c *client.Client, _ []string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, err := c.DatasetStatus(ctx)
	if err != nil {
		return err
	}
	return printStatus(g.stdout, status)
}

func runReload(ctx context.Context, g *globals, c *client.Client, _ []string) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, err := c.ReloadDataset(ctx)
	if err != nil {
		return err
	}
	return printStatus(g.stdout, status)
}

func printStatus(w io.Writer, s *client.DatasetStatus) error {
	loaded := "never"
	if s.LoadedAt != nil {
		loaded = s.LoadedAt.Format(time.RFC3339)
	}
	_, err := fmt.Fprintf(w, "rows: %d\norders: %d\ndropped: %d\nloaded_at: %s\n", s.Rows, s.Orders, s.Dropped, loaded)
	return err
}
