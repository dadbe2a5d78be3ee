package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ProgressBar renders a single-line progress bar. The label and total can change
// between phases of a run.
type ProgressBar struct {
	mu      sync.Mutex
	writer  io.Writer
	label   string
	total   int
	current int
	width   int
	noColor bool
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Width   int // Default: 40
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width == 0 {
		width = 40
	}
	return &ProgressBar{writer: w, width: width, noColor: opts.NoColor}
}

// Update moves the bar to done of total for label. A new label ends the previous line.
func (p *ProgressBar) Update(label string, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.label != "" && label != p.label {
		fmt.Fprintln(p.writer)
	}
	p.label = label
	p.total = total
	p.current = done
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

// Finish ends the current line and prints a success message when one is given
func (p *ProgressBar) Finish(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.label != "" {
		fmt.Fprintln(p.writer)
		p.label = ""
	}
	if message != "" {
		fmt.Fprintln(p.writer, FormatSuccess(message, p.noColor))
	}
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filled := int(float64(p.width) * percent)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filled))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	fmt.Fprintf(p.writer, "\r%s %3d%% %s %d/%d", bar.String(), int(percent*100), p.label, p.current, p.total)
}
