package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives progress of a multi-page run.
type ProgressCallback interface {
	// OnStart is called once with the number of pages.
	OnStart(total int)

	// OnProgress is called after each finished page.
	OnProgress(current, total int)

	// OnComplete is called when all pages are done.
	OnComplete()

	// OnError is called for every failed page.
	OnError(current int, err error)
}

// NoOpProgressCallback implements ProgressCallback but does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(int)         {}
func (NoOpProgressCallback) OnProgress(int, int) {}
func (NoOpProgressCallback) OnComplete()         {}
func (NoOpProgressCallback) OnError(int, error)  {}

// ConsoleProgressCallback keeps one status line on a terminal up to date:
// a bar, the finished and failed page counts and the page rate. Failures are
// printed on lines of their own above the status line.
type ConsoleProgressCallback struct {
	w        io.Writer
	width    int
	interval time.Duration

	mu     sync.Mutex
	start  time.Time
	drawn  time.Time
	done   int
	failed int
	total  int
}

// NewConsoleProgressCallback creates a console progress reporter writing to
// w, or to stderr when w is nil. The status line is redrawn at most once per
// interval, except for the last page.
func NewConsoleProgressCallback(w io.Writer, width int, interval time.Duration) *ConsoleProgressCallback {
	if w == nil {
		w = os.Stderr
	}
	if width <= 0 {
		width = 30
	}
	return &ConsoleProgressCallback{w: w, width: width, interval: interval}
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.start = time.Now()
	c.done, c.failed, c.total = 0, 0, total
	c.draw(c.start)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.done, c.total = current, total
	now := time.Now()
	if now.Sub(c.drawn) < c.interval && current < total {
		return
	}
	c.draw(now)
}

func (c *ConsoleProgressCallback) OnError(current int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failed++
	_, _ = fmt.Fprintf(c.w, "\rpage %d failed: %v\n", current, err)
	c.draw(time.Now())
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draw(time.Now())
	_, _ = fmt.Fprintln(c.w)
}

func (c *ConsoleProgressCallback) draw(now time.Time) {
	c.drawn = now
	filled := 0
	if c.total > 0 {
		filled = min(c.width*c.done/c.total, c.width)
	}
	line := fmt.Sprintf("\rpages [%s%s] %d/%d",
		strings.Repeat("=", filled), strings.Repeat(" ", c.width-filled), c.done, c.total)
	if c.failed > 0 {
		line += fmt.Sprintf(" (%d failed)", c.failed)
	}
	if elapsed := now.Sub(c.start).Seconds(); c.done > 0 && elapsed > 0 {
		line += fmt.Sprintf(" %.1f/s", float64(c.done)/elapsed)
	}
	_, _ = fmt.Fprint(c.w, line)
}

// LogProgressCallback logs progress with slog every interval pages.
type LogProgressCallback struct {
	logger    *slog.Logger
	level     slog.Level
	interval  int
	mutex     sync.Mutex
	lastLog   int
	startTime time.Time
}

// NewLogProgressCallback creates a log-based progress reporter.
func NewLogProgressCallback(logger *slog.Logger, level slog.Level) *LogProgressCallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgressCallback{logger: logger, level: level, interval: 10}
}

// WithInterval sets how many pages pass between two log lines.
func (l *LogProgressCallback) WithInterval(interval int) *LogProgressCallback {
	if interval > 0 {
		l.interval = interval
	}
	return l
}

func (l *LogProgressCallback) OnStart(total int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.startTime = time.Now()
	l.lastLog = 0
	l.logger.Log(nil, l.level, "Starting page processing", "total", total)
}

func (l *LogProgressCallback) OnProgress(current, total int) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if current-l.lastLog < l.interval && current != total {
		return
	}
	l.lastLog = current
	l.logger.Log(nil, l.level, "Page processing progress",
		"current", current,
		"total", total,
		"elapsed", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnComplete() {
	l.logger.Log(nil, l.level, "Page processing completed", "duration", time.Since(l.startTime).Round(time.Millisecond))
}

func (l *LogProgressCallback) OnError(current int, err error) {
	l.logger.Error("Page processing failed", "page", current, "error", err)
}
