// Command dashctl drives the dashboard controller against a running server.
//
//	dashctl [-server URL] [-timeout D] <command> [flags]
//
// Commands: refresh, export, watch, snapshot, status, reload.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockedby/sales-dashboard/internal/client"
	"github.com/blockedby/sales-dashboard/internal/logger"
)

const defaultServer = "http://localhost:5000"

// globals are the flags shared by every command.
type globals struct {
	server   string
	timeout  time.Duration
	logLevel string
	stdout   io.Writer
	stderr   io.Writer
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, g *globals, c *client.Client, args []string) error
}

var commands = []command{
	{"refresh", "fetch the KPIs once and print them; -out writes chart PNGs", runRefresh},
	{"months", "print total sales per month", runMonths},
	{"export", "download the CSV report into -dir", runExport},
	{"watch", "refresh whenever the server reloads its dataset", runWatch},
	{"snapshot", "capture the dashboard page to -o (.pdf or .png) with headless Chrome", runSnapshot},
	{"status", "print the loaded dataset stats", runStatus},
	{"reload", "ask the server to reload its dataset", runReload},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "dashctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	g := &globals{stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("dashctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.server, "server", envOr("DASHBOARD_URL", defaultServer), "dashboard base URL")
	fs.DurationVar(&g.timeout, "timeout", 30*time.Second, "per request timeout")
	fs.StringVar(&g.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	// logs go to stderr so command output can be piped
	log, err := logger.NewWithConsole(stderr, g.logLevel, "")
	if err != nil {
		return err
	}
	logger.Global = log

	c, err := client.New(g.server, nil)
	if err != nil {
		return err
	}

	name := fs.Arg(0)
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(ctx, g, c, fs.Args()[1:])
		}
	}
	fs.Usage()
	return fmt.Errorf("unknown command %q", name)
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: dashctl [flags] <command> [command flags]")
	fmt.Fprintln(out, "\ncommands:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %-9s %s\n", cmd.name, cmd.usage)
	}
	fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
