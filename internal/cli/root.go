// Package cli implements the icalscan command: load one or more .ics
// files, expand them inside a window, and print the occurrences.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	icalscan "github.com/mjheller/icalscan"
	"github.com/mjheller/icalscan/calendar"
)

type options struct {
	From    string
	To      string
	Kinds   []string
	Zone    string
	Config  string
	Verbose bool
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "icalscan:", err)
		return 1
	}
	return 0
}

// NewRootCommand builds the icalscan command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "icalscan [flags] FILE...",
		Short:         "Expand iCalendar files into concrete occurrences inside a time window",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	root.Flags().StringVar(&opts.From, "from", "", "Window start (2006-01-02 or RFC 3339); default today")
	root.Flags().StringVar(&opts.To, "to", "", "Window end, exclusive; default from+7d")
	root.Flags().StringSliceVar(&opts.Kinds, "kinds", nil, "Component kinds: events,tasks,journals,freebusy")
	root.Flags().StringVar(&opts.Zone, "zone", "", "IANA timezone occurrences are printed in")
	root.Flags().StringVar(&opts.Config, "config", "", "YAML config file with sources and defaults")
	root.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log data-level warnings")

	return root
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	sources := make([]Source, 0, len(args))
	for _, path := range args {
		sources = append(sources, Source{Path: path})
	}

	if opts.Config != "" {
		cfg, err := LoadConfig(opts.Config)
		if err != nil {
			return err
		}
		sources = append(sources, cfg.Sources...)
		if opts.From == "" {
			opts.From = cfg.From
		}
		if opts.To == "" {
			opts.To = cfg.To
		}
		if opts.Zone == "" {
			opts.Zone = cfg.Timezone
		}
		if len(opts.Kinds) == 0 {
			opts.Kinds = cfg.Kinds
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no input files; pass FILE arguments or --config")
	}

	begin, end, err := window(opts.From, opts.To)
	if err != nil {
		return err
	}

	kinds := make([]icalscan.Kind, 0, len(opts.Kinds))
	for _, name := range opts.Kinds {
		kind, err := icalscan.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	var display *time.Location
	if opts.Zone != "" {
		display, err = time.LoadLocation(opts.Zone)
		if err != nil {
			return fmt.Errorf("unknown --zone %q: %w", opts.Zone, err)
		}
	}

	level := slog.LevelError
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg := icalscan.DefaultConfig
	cfg.Logger = logger
	scanner := icalscan.NewScannerWithConfig(cfg)

	for _, src := range sources {
		f, err := os.Open(src.Path)
		if err != nil {
			return fmt.Errorf("open %s: %w", src.Path, err)
		}
		cal, err := calendar.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("decode %s: %w", src.Path, err)
		}

		occurrences, err := scanner.Scan(cal, begin, end, kinds...)
		if err != nil {
			return err
		}
		for _, occ := range occurrences {
			printOccurrence(cmd, occ, src, display)
		}
	}
	return nil
}

func printOccurrence(cmd *cobra.Command, occ *icalscan.Occurrence, src Source, display *time.Location) {
	start, end := occ.Start(), occ.End()
	if display != nil {
		start = start.In(display)
		end = end.In(display)
	}
	label := occ.Summary().OrElse("(no summary)")
	if src.Name != "" {
		label = src.Name + ": " + label
	}
	length := strings.TrimSpace(humanize.RelTime(start, end, "", ""))
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s (%s)\n",
		start.Format("2006-01-02 15:04 MST"),
		end.Format("2006-01-02 15:04 MST"),
		label, length)
}

// window parses the --from/--to bounds. Bare dates map to UTC midnight;
// the scanner itself only takes time.Time bounds.
func window(from, to string) (time.Time, time.Time, error) {
	begin := time.Now().UTC().Truncate(24 * time.Hour)
	if from != "" {
		var err error
		begin, err = parseBound(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
	}
	end := begin.AddDate(0, 0, 7)
	if to != "" {
		var err error
		end, err = parseBound(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return begin, end, nil
}

func parseBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported time %q", s)
}
