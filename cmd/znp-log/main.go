// Command znp-log is a tool for viewing and analyzing ZNP protocol captures.
//
// Captures are written by znp-cmdline when it runs with --protocol-log.
//
// Usage:
//
//	znp-log <command> [flags] <file.zlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	znp-log view session.zlog
//
//	# View only raw frames
//	znp-log view --layer transport session.zlog
//
//	# View only ZDO traffic received from the coprocessor
//	znp-log view --direction in --subsystem zdo session.zlog
//
//	# Export to CSV
//	znp-log export --format csv -o session.csv session.zlog
//
//	# Keep one session's AF_REGISTER exchange
//	znp-log filter --session-id 5f1c2a7e-... --command AF_REGISTER -o af.zlog session.zlog
//
//	# Show statistics
//	znp-log stats session.zlog
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Torchwoods/znp-host-framework/cmd/znp-log/commands"
)

const usage = `znp-log - ZNP Protocol Log Analyzer

Usage:
  znp-log <command> [flags] <file.zlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "znp-log <command> --help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet returns a flag set whose usage text starts with summary.
func newFlagSet(name, summary, args string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "znp-log %s - %s\n\nUsage:\n  znp-log %s %s\n\n", name, summary, name, args)
		if fs.HasFlags() {
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parse parses args and returns the log file path. It exits on failure.
func parse(fs *pflag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View log file in human-readable format", "[flags] <file.zlog>")

	layer := fs.String("layer", "", "Filter by layer (transport, mt, host)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, state, error)")
	subsystem := fs.String("subsystem", "", "Filter by MT subsystem (sys, af, zdo, ...)")
	command := fs.String("command", "", "Filter by command name (e.g. ZDO_STATE_CHANGE_IND)")

	path := parse(fs, args)

	filter := commands.ViewFilter{Command: *command}

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}

	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if *subsystem != "" {
		s, err := commands.ParseSubsystemFlag(*subsystem)
		if err != nil {
			fail(err)
		}
		filter.Subsystem = &s
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export log file to JSON or CSV format", "[flags] <file.zlog>")

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")

	path := parse(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter log file and write to new file", "[flags] <file.zlog>")

	var opts commands.FilterOptions
	fs.StringVarP(&opts.Output, "output", "o", "", "Output file (required)")
	fs.StringVar(&opts.SessionID, "session-id", "", "Filter by session ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, mt, host)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	fs.StringVar(&opts.Subsystem, "subsystem", "", "Filter by MT subsystem (sys, af, zdo, ...)")
	fs.StringVar(&opts.Command, "command", "", "Filter by command name")

	path := parse(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the log file", "<file.zlog>")

	path := parse(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
