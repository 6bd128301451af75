package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ktnyt/fae-sub001/internal/coordinator"
	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/message"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "fae",
		Usage:   "concurrent code search and symbol index",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root to search/watch",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "show debug logging",
			},
		},
		Commands: []*cli.Command{
			searchCmd,
			indexCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fae:", err)
		os.Exit(1)
	}
}

var searchCmd = &cli.Command{
	Name:      "search",
	Usage:     "run one query and stream results as JSON lines",
	ArgsUsage: "<query>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "literal|regexp|symbol|variable|filepath",
			Value: "literal",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "keep the index live and keep streaming events after the search completes",
		},
		&cli.IntFlag{
			Name:  "debounce-ms",
			Usage: "watcher debounce window override",
		},
		&cli.Int64Flag{
			Name:  "max-file-size",
			Usage: "skip files larger than this many bytes (native backend)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude-ext",
			Usage: "additional binary extensions to skip (native backend)",
		},
	},
	Action: searchAction,
}

var indexCmd = &cli.Command{
	Name:  "index",
	Usage: "run the initial symbol-index scan and report progress",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "keep watching and re-indexing after the initial scan",
		},
	},
	Action: indexAction,
}

func buildOptions(c *cli.Context, mode *message.SearchMode) (coordinator.Options, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return coordinator.Options{}, fmt.Errorf("resolving root: %w", err)
	}
	return coordinator.Options{
		RootPath:           root,
		WatchFiles:         c.Bool("watch"),
		SearchMode:         mode,
		DebounceMs:         c.Int("debounce-ms"),
		MaxFileSize:        c.Int64("max-file-size"),
		ExcludedExtensions: c.StringSlice("exclude-ext"),
		Log:                debug.New("[fae] ", c.Bool("verbose")),
	}, nil
}

func parseMode(s string) (message.SearchMode, error) {
	switch s {
	case "literal":
		return message.ModeLiteral, nil
	case "regexp":
		return message.ModeRegexp, nil
	case "symbol":
		return message.ModeSymbol, nil
	case "variable":
		return message.ModeVariable, nil
	case "filepath":
		return message.ModeFilepath, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

func searchAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("usage: fae search [flags] <query>")
	}
	query := c.Args().First()

	mode, err := parseMode(c.String("mode"))
	if err != nil {
		return err
	}

	opts, err := buildOptions(c, &mode)
	if err != nil {
		return err
	}

	co, err := coordinator.New(opts)
	if err != nil {
		return fmt.Errorf("starting coordinator: %w", err)
	}
	defer co.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	co.Send(message.NewUpdateSearchParams(query, mode))

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-co.Results():
			if !ok {
				return nil
			}
			if err := emit(out, msg); err != nil {
				return err
			}
			if msg.Method == message.MethodCompleteSearch && !opts.WatchFiles {
				out.Flush()
				return nil
			}
		}
	}
}

func indexAction(c *cli.Context) error {
	opts, err := buildOptions(c, nil)
	if err != nil {
		return err
	}

	co, err := coordinator.New(opts)
	if err != nil {
		return fmt.Errorf("starting coordinator: %w", err)
	}
	defer co.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	co.Initialize()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-co.Results():
			if !ok {
				return nil
			}
			if err := emit(out, msg); err != nil {
				return err
			}
			if msg.Method == message.MethodCompleteInitialIndex && !opts.WatchFiles {
				out.Flush()
				return nil
			}
		}
	}
}

// emit writes one result message as a JSON line, the same line-oriented
// shape the teacher's own CLI commands use for machine-readable output.
func emit(w *bufio.Writer, msg message.Message) error {
	line := struct {
		Method  message.Method     `json:"method"`
		Payload message.FaeMessage `json:"payload"`
		Time    string             `json:"time"`
	}{Method: msg.Method, Payload: msg.Payload, Time: time.Now().UTC().Format(time.RFC3339Nano)}

	enc, err := json.Marshal(line)
	if err != nil {
		return err
	}
	if _, err := w.Write(enc); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
