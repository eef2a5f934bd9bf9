package debug

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger  *logrus.Logger
	mu      sync.Mutex
	enabled bool
)

// Enable starts diagnostic logging to w (normally stderr). With verbose set,
// debug-level category logs are written too, otherwise only warnings.
func Enable(w io.Writer, verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.WarnLevel)
	}

	logger = l
	enabled = true
}

// Disable stops diagnostic logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	logger = nil
	enabled = false
}

func entry(category string) *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return nil
	}
	return logger.WithField("category", category)
}

// Log writes a debug-level message
func Log(category, format string, args ...any) {
	if e := entry(category); e != nil {
		e.Debugf(format, args...)
	}
}

// Warn reports an anomaly that does not change the output
func Warn(category, format string, args ...any) {
	if e := entry(category); e != nil {
		e.Warnf(format, args...)
	}
}

// LogEvery logs only every N calls (use for per-message events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	if n <= 0 {
		n = 1
	}

	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
