package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ UNKNOWN FRAMEWORK: netcore-22
//	   No framework index named 'netcore-22'.
//
//	   Did you mean: netcore-2.2?
//
//	   → List frameworks: netdocs variants
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelStyle(opts.Level)
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Details) > 0 {
		b.WriteString("\n")
		for _, line := range opts.Details {
			bodyColor.Fprintf(&b, "   %s\n", line)
		}
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

func levelStyle(level ErrorLevel) (*color.Color, *color.Color, string) {
	switch level {
	case ErrorLevelWarning:
		return color.New(color.FgYellow, color.Bold), color.New(color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		return color.New(color.FgCyan, color.Bold), color.New(color.FgCyan), "ℹ️"
	default:
		return color.New(color.FgRed, color.Bold), color.New(color.FgRed), "❌"
	}
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// SetupError explains a missing corpus. message is the multi-line setup error.
func SetupError(message string, noColor bool) string {
	lines := strings.Split(strings.TrimSpace(message), "\n")
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CORPUS NOT FOUND",
		Problem: lines[0],
		Details: lines[1:],
		HelpCommands: []string{
			"Point at the clones: netdocs scrape --corpus <dir>",
			"Get help: netdocs scrape --help",
		},
		NoColor: noColor,
	})
}

// UnknownFrameworkError reports a framework without an index file
func UnknownFrameworkError(framework string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "UNKNOWN FRAMEWORK",
		Problem:     fmt.Sprintf("No framework index named '%s'.", framework),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List frameworks: netdocs variants",
		},
		NoColor: noColor,
	})
}

// ScrapeError reports an aborted run
func ScrapeError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "SCRAPE FAILED",
		Problem: message,
		Details: []string{"The corpus does not match its framework index; no pages were kept."},
		HelpCommands: []string{
			"Inspect with debug logs: netdocs scrape --verbose",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat netdocs.yml",
			"Get help: netdocs --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}
