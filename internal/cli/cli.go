// Package cli parses the tomatray command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"tomatray/internal/dbusctl"
)

// Durations holds test-mode overrides. Durations are in seconds.
type Durations struct {
	Work              int
	ShortBreak        int
	LongBreak         int
	SessionsUntilLong int
}

// Options is the parsed command line.
type Options struct {
	Verbose   bool
	JSONLog   bool
	LogFile   string
	AutoStart bool

	// Command is the D-Bus method to forward, empty when launching the app.
	Command string

	// TestMode is set when the first positional argument is a duration.
	TestMode  bool
	Durations Durations
}

// DefaultDurations is the classic cycle expressed in seconds.
func DefaultDurations() Durations {
	return Durations{Work: 25 * 60, ShortBreak: 5 * 60, LongBreak: 15 * 60, SessionsUntilLong: 4}
}

// Parse reads args (without the program name). Usage goes to output.
func Parse(program string, args []string, output io.Writer) (Options, error) {
	var options Options

	flags := flag.NewFlagSet(program, flag.ContinueOnError)
	flags.SetOutput(output)
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&options.JSONLog, "json-log", false, "Log as JSON")
	flags.StringVar(&options.LogFile, "log-file", "", "Also write logs to this file")
	flags.BoolVar(&options.AutoStart, "auto-start", false, "Start tomatray if it is not running")
	flags.Usage = func() { printUsage(output, program, flags) }

	if err := flags.Parse(args); err != nil {
		return options, err
	}

	positional := flags.Args()
	for _, arg := range positional {
		if method, ok := dbusctl.ParseCommand(arg); ok {
			options.Command = method
			return options, nil
		}
	}

	options.Durations = DefaultDurations()
	if len(positional) == 0 {
		return options, nil
	}

	work, ok := ParseDuration(positional[0])
	if !ok {
		return options, fmt.Errorf("unknown command or duration %q", positional[0])
	}
	options.TestMode = true
	options.Durations.Work = work

	if len(positional) > 1 {
		if seconds, ok := ParseDuration(positional[1]); ok {
			options.Durations.ShortBreak = seconds
		}
	}
	if len(positional) > 2 {
		if sessions, err := strconv.Atoi(positional[2]); err == nil && sessions > 0 {
			options.Durations.SessionsUntilLong = sessions
		}
	}
	if len(positional) > 3 {
		if seconds, ok := ParseDuration(positional[3]); ok {
			options.Durations.LongBreak = seconds
		}
	}
	return options, nil
}

// ParseDuration converts "30s", "2m", "1h" or a bare number of minutes to
// seconds. It reports false for anything else, including zero.
func ParseDuration(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	multiplier := 60
	switch value[len(value)-1] {
	case 's':
		multiplier = 1
		value = value[:len(value)-1]
	case 'm':
		value = value[:len(value)-1]
	case 'h':
		multiplier = 3600
		value = value[:len(value)-1]
	}

	amount, err := strconv.Atoi(value)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount * multiplier, true
}

// IsHelp reports whether err came from --help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func printUsage(output io.Writer, program string, flags *flag.FlagSet) {
	fmt.Fprintf(output, "Usage: %s [work] [short_break] [sessions] [long_break]\n", program)
	fmt.Fprintf(output, "       %s <command> [--auto-start]\n\n", program)
	fmt.Fprintln(output, "Timer examples:")
	fmt.Fprintf(output, "  %s                 # 25m work, 5m break, long break every 4\n", program)
	fmt.Fprintf(output, "  %s 15s 5s 4 10s    # test mode in seconds\n", program)
	fmt.Fprintf(output, "  %s 2m 30s 2 1m     # quick test\n\n", program)
	fmt.Fprintln(output, "Units: s, m, h. No suffix means minutes.")
	fmt.Fprintln(output, "\nCommands:")
	for _, command := range dbusctl.Commands() {
		fmt.Fprintf(output, "  %s\n", command)
	}
	fmt.Fprintln(output, "\nFlags:")
	flags.PrintDefaults()
}
