package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// stderrLogger prints library log entries for --verbose.
type stderrLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func newStderrLogger(w io.Writer) *stderrLogger {
	return &stderrLogger{w: w}
}

func (l *stderrLogger) Debug(msg string, fields map[string]interface{}) { l.log("DEBUG", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]interface{})  { l.log("INFO", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]interface{})  { l.log("WARN", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]interface{}) { l.log("ERROR", msg, fields) }

func (l *stderrLogger) log(level, msg string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var line strings.Builder

	line.WriteString(level)
	line.WriteString(" ")
	line.WriteString(msg)

	for _, key := range keys {
		value, err := cast.ToStringE(fields[key])
		if err != nil {
			value = fmt.Sprint(fields[key])
		}

		line.WriteString(" ")
		line.WriteString(key)
		line.WriteString("=")
		line.WriteString(value)
	}

	line.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = io.WriteString(l.w, line.String())
}
