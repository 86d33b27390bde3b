package headless

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only critical information (errors, warnings, final summary)
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows standard execution progress (default)
	LogLevelNormal
	// LogLevelVerbose shows detailed execution information
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// Logger is the coloured console output of a scenario run
type Logger struct {
	level  LogLevel
	writer io.Writer

	// ANSI color codes
	colorReset     string
	colorCyan      string
	colorSalmon    string
	colorYellow    string
	colorRed       string
	colorGray      string
	colorBoldGreen string
	colorBoldRed   string
	colorBoldWhite string
}

// NewLogger creates a console logger writing to stdout
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a console logger writing to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		level:          level,
		writer:         w,
		colorReset:     "\033[0m",
		colorCyan:      "\033[36m",
		colorSalmon:    "\033[38;5;217m", // Salmon pink #FFB3BA
		colorYellow:    "\033[33m",
		colorRed:       "\033[31m",
		colorGray:      "\033[90m",
		colorBoldGreen: "\033[1;32m",
		colorBoldRed:   "\033[1;31m",
		colorBoldWhite: "\033[1;37m",
	}
}

// Header prints a prominent header message
func (l *Logger) Header(message string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintf(l.writer, "\n%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
		fmt.Fprintf(l.writer, "%s  %s%s\n", l.colorBoldWhite, message, l.colorReset)
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	}
}

// Section prints a section divider
func (l *Logger) Section(title string) {
	if l.level >= LogLevelNormal {
		fmt.Fprintln(l.writer)
		fmt.Fprintf(l.writer, "%s▶ %s%s\n", l.colorCyan, title, l.colorReset)
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorGray, strings.Repeat("─", 50), l.colorReset)
	}
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...any) {
	if l.level >= LogLevelNormal {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s✓ %s%s\n", l.colorBoldGreen, msg, l.colorReset)
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...any) {
	if l.level >= LogLevelNormal {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s%s%s\n", l.colorSalmon, msg, l.colorReset)
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...any) {
	if l.level >= LogLevelQuiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s⚠ Warning: %s%s\n", l.colorYellow, msg, l.colorReset)
	}
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...any) {
	if l.level >= LogLevelQuiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s✗ Error: %s%s\n", l.colorBoldRed, msg, l.colorReset)
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...any) {
	if l.level >= LogLevelVerbose {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(l.writer, "%s→ %s%s\n", l.colorGray, msg, l.colorReset)
	}
}

// StepResult prints one scenario step. Failed steps are always shown.
func (l *Logger) StepResult(res StepResult) {
	if len(res.Failures) > 0 {
		fmt.Fprintf(l.writer, "%s  ✗ [%d] %s%s\n", l.colorBoldRed, res.Index, res.Action, l.colorReset)
		for _, f := range res.Failures {
			fmt.Fprintf(l.writer, "%s      %s%s\n", l.colorRed, f, l.colorReset)
		}
		return
	}

	switch l.level {
	case LogLevelQuiet:
	case LogLevelNormal:
		fmt.Fprintf(l.writer, "%s  • [%d] %s%s%s\n", l.colorGray, res.Index, res.Action, hitSuffix(res), l.colorReset)
	case LogLevelVerbose, LogLevelDebug:
		fmt.Fprintf(l.writer, "%s  ✓ [%d] %s%s → %s stage %d%s\n",
			l.colorCyan, res.Index, res.Action, hitSuffix(res), res.Phase, res.Stage, l.colorReset)
		if res.Status != "" {
			fmt.Fprintf(l.writer, "%s      status: %s%s\n", l.colorGray, res.Status, l.colorReset)
		}
		if l.level >= LogLevelDebug && len(res.Candidates) > 0 {
			fmt.Fprintf(l.writer, "%s      candidates: %s%s\n", l.colorGray, strings.Join(res.Candidates, ", "), l.colorReset)
		}
	}
}

func hitSuffix(res StepResult) string {
	if res.Action != ActionTap {
		return ""
	}
	if res.Hit == "" {
		return " (miss)"
	}
	return " → " + res.Hit
}

// Summary prints the final scenario summary
func (l *Logger) Summary(summary *ExecutionSummary) {
	l.printSummaryHeader()
	l.printStatus(summary.Status)
	fmt.Fprintf(l.writer, "  Scenario: %s\n", summary.Scenario)
	fmt.Fprintf(l.writer, "  Duration: %s\n", summary.Duration.Round(time.Millisecond))
	l.printRuns(summary)
	l.printMetrics(summary)
	l.printError(summary)
	l.printSummaryFooter()
}

func (l *Logger) printSummaryHeader() {
	fmt.Fprintln(l.writer)
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	fmt.Fprintf(l.writer, "%s  SCENARIO SUMMARY%s\n", l.colorBoldWhite, l.colorReset)
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
}

func (l *Logger) printStatus(status string) {
	fmt.Fprint(l.writer, "  Status: ")
	switch status {
	case statusSuccess:
		fmt.Fprintf(l.writer, "%s✓ SUCCESS%s\n", l.colorBoldGreen, l.colorReset)
	case statusNoMatch:
		fmt.Fprintf(l.writer, "%s⚠ NO MATCHING VARIANT%s\n", l.colorYellow, l.colorReset)
	case statusFailed:
		fmt.Fprintf(l.writer, "%s✗ FAILED%s\n", l.colorBoldRed, l.colorReset)
	default:
		fmt.Fprintln(l.writer, status)
	}
}

func (l *Logger) printRuns(summary *ExecutionSummary) {
	if len(summary.Runs) == 0 {
		return
	}
	fmt.Fprintf(l.writer, "\n  🧪 Variants:\n")
	for _, run := range summary.Runs {
		color, mark := l.colorBoldGreen, "✓"
		if run.Status != statusSuccess {
			color, mark = l.colorBoldRed, "✗"
		}
		fmt.Fprintf(l.writer, "%s    %s %s%s (%s, stage %d)\n", color, mark, run.Variant, l.colorReset, run.FinalPhase, run.FinalStage)
		if l.level >= LogLevelVerbose {
			for _, e := range run.Tally {
				fmt.Fprintf(l.writer, "%s      %s: %d%s\n", l.colorGray, e.Label, e.Count, l.colorReset)
			}
		}
	}
}

func (l *Logger) printMetrics(summary *ExecutionSummary) {
	m := summary.Metrics
	fmt.Fprintf(l.writer, "\n  📊 Metrics:\n")
	fmt.Fprintf(l.writer, "    Steps: %d across %d variants\n", m.Steps, m.Variants)
	fmt.Fprintf(l.writer, "    Taps: %d (%d registered)\n", m.Taps, m.TapsRegistered)
	if m.Responses > 0 {
		fmt.Fprintf(l.writer, "    Responses: %d\n", m.Responses)
	}
	if m.Failures > 0 {
		fmt.Fprintf(l.writer, "%s    Failed checks: %d%s\n", l.colorBoldRed, m.Failures, l.colorReset)
	}
}

func (l *Logger) printError(summary *ExecutionSummary) {
	if summary.Error == "" {
		return
	}

	fmt.Fprintln(l.writer)
	fmt.Fprintf(l.writer, "%s  Error Details:%s\n", l.colorBoldRed, l.colorReset)
	fmt.Fprintf(l.writer, "%s    %s%s\n", l.colorRed, summary.Error, l.colorReset)
}

func (l *Logger) printSummaryFooter() {
	fmt.Fprintf(l.writer, "%s%s%s\n", l.colorBoldWhite, strings.Repeat("=", 70), l.colorReset)
	fmt.Fprintln(l.writer)
}

// parseLogLevel converts a string log level to LogLevel type
func parseLogLevel(level string) LogLevel {
	switch level {
	case "quiet":
		return LogLevelQuiet
	case "normal":
		return LogLevelNormal
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}
