package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Printer writes styled messages to an output and an error stream.
type Printer struct {
	out      io.Writer
	err      io.Writer
	useColor bool
	styles   styles
}

type styles struct {
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	info    lipgloss.Style
	step    lipgloss.Style
	detail  lipgloss.Style
	title   lipgloss.Style
	header  lipgloss.Style
	accent  lipgloss.Style
	muted   lipgloss.Style
	bar     lipgloss.Style
	user    lipgloss.Style
	agent   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		warning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		info:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		step:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("8")),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		header:  r.NewStyle().Bold(true).Underline(true),
		accent:  r.NewStyle().Foreground(lipgloss.Color("212")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		bar:     r.NewStyle().Foreground(lipgloss.Color("86")),
		user:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		agent:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	}
}

// plainStyles renders text unchanged, without escape sequences.
func plainStyles(r *lipgloss.Renderer) styles {
	plain := r.NewStyle()
	return styles{
		success: plain, failure: plain, warning: plain, info: plain,
		step: plain, detail: plain, title: plain, header: plain,
		accent: plain, muted: plain, bar: plain, user: plain, agent: plain,
	}
}

// NewPrinter creates a printer on stdout and stderr, colored when stdout is
// a terminal.
func NewPrinter() *Printer {
	return NewPrinterWithWriters(os.Stdout, os.Stderr, IsTerminal())
}

// NewPrinterWithWriters creates a printer with custom writers.
func NewPrinterWithWriters(out, err io.Writer, useColor bool) *Printer {
	r := lipgloss.NewRenderer(out)
	st := plainStyles(r)
	if useColor {
		r.SetColorProfile(termenv.ANSI256)
		st = newStyles(r)
	}
	return &Printer{
		out:      out,
		err:      err,
		useColor: useColor,
		styles:   st,
	}
}

// Out returns the writer regular output goes to.
func (p *Printer) Out() io.Writer {
	return p.out
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.out, p.styles.success, "✓ "+fmt.Sprintf(format, args...))
}

// Error prints an error message to the error stream.
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.err, p.styles.failure, "✗ "+fmt.Sprintf(format, args...))
}

// Warning prints a warning to the error stream.
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.err, p.styles.warning, "⚠ "+fmt.Sprintf(format, args...))
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.out, p.styles.info, "→ "+fmt.Sprintf(format, args...))
}

// Step prints a step message.
func (p *Printer) Step(format string, args ...interface{}) {
	p.line(p.out, p.styles.step, "▶ "+fmt.Sprintf(format, args...))
}

// Detail prints an indented secondary message.
func (p *Printer) Detail(format string, args ...interface{}) {
	p.line(p.out, p.styles.detail, "  "+fmt.Sprintf(format, args...))
}

// Print prints a plain message.
func (p *Printer) Print(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Println prints a plain message with newline.
func (p *Printer) Println(args ...interface{}) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Printer) line(w io.Writer, style lipgloss.Style, message string) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintln(w, style.Render(message))
}

// isTerminal checks if stdout is a terminal
func IsTerminal() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
