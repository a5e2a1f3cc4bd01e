package output

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Spinner characters for animation
var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StreamView shows an agent reply while it streams. On a terminal the latest
// progress line is redrawn in place next to a spinner; otherwise each new
// progress line is printed once.
type StreamView struct {
	printer   *Printer
	startTime time.Time
	animate   bool

	mu           sync.Mutex
	current      string
	lastPrinted  string
	spinnerIndex int

	done    chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// StartStream begins a live view.
func (p *Printer) StartStream() *StreamView {
	v := &StreamView{
		printer:   p,
		startTime: time.Now(),
		animate:   p.useColor,
		done:      make(chan struct{}),
	}
	if v.animate {
		v.wg.Add(1)
		go v.spin()
	}
	return v
}

// Update replaces the in-progress content.
func (v *StreamView) Update(content string) {
	v.mu.Lock()
	v.current = content
	index := v.spinnerIndex
	line := lastLine(content)
	printLine := !v.animate && line != "" && line != v.lastPrinted
	if printLine {
		v.lastPrinted = line
	}
	v.mu.Unlock()

	if v.animate {
		v.render(index)
		return
	}
	if printLine {
		v.printer.line(v.printer.out, v.printer.styles.muted, "… "+line)
	}
}

// Finish stops the view and prints the final reply. An empty reply falls
// back to the last in-progress content.
func (v *StreamView) Finish(final string) {
	v.Stop()

	v.mu.Lock()
	if final == "" {
		final = v.current
	}
	v.mu.Unlock()

	if final == "" {
		return
	}
	_, _ = fmt.Fprintf(v.printer.out, "%s %s\n", v.printer.styles.agent.Render("dailyAGI:"), final)
}

// Fail stops the view and prints err.
func (v *StreamView) Fail(err error) {
	v.Stop()
	v.printer.Error("%v", err)
}

// Stop halts the animation and clears the line. It is safe to call twice.
func (v *StreamView) Stop() {
	v.mu.Lock()
	if v.stopped {
		v.mu.Unlock()
		return
	}
	v.stopped = true
	close(v.done)
	v.mu.Unlock()

	v.wg.Wait()
	if v.animate {
		_, _ = fmt.Fprint(v.printer.out, "\r\033[K")
	}
}

func (v *StreamView) spin() {
	defer v.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	v.render(0)
	for {
		select {
		case <-v.done:
			return
		case <-ticker.C:
			v.mu.Lock()
			v.spinnerIndex++
			index := v.spinnerIndex
			v.mu.Unlock()
			v.render(index)
		}
	}
}

func (v *StreamView) render(spinnerIndex int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return
	}

	message := lastLine(v.current)
	if message == "" {
		message = "Waiting for dailyAGI..."
	}
	spinner := spinnerChars[spinnerIndex%len(spinnerChars)]
	elapsed := v.printer.styles.muted.Render("[" + formatDuration(time.Since(v.startTime)) + "]")

	_, _ = fmt.Fprintf(v.printer.out, "\r%s %s %s\033[K", v.printer.styles.info.Render(spinner), message, elapsed)
}

func lastLine(content string) string {
	content = strings.TrimRight(content, "\n")
	if i := strings.LastIndexByte(content, '\n'); i >= 0 {
		return content[i+1:]
	}
	return content
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}
