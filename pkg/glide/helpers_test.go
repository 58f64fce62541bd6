package glide_test

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

var errScriptExhausted = errors.New("no scripted response left")

type incident struct {
	glide.Base

	Number           string `json:"number"`
	ShortDescription string `json:"short_description,omitempty"`
	Active           string `json:"active,omitempty"`
}

type scripted struct {
	resp *glide.Response
	err  error
}

// scriptedTransport replays canned responses and records requests.
type scriptedTransport struct {
	mu        sync.Mutex
	responses []scripted
	requests  []*glide.Request
}

func (s *scriptedTransport) Do(_ context.Context, req *glide.Request) (*glide.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	if len(s.responses) == 0 {
		return nil, errScriptExhausted
	}

	next := s.responses[0]
	s.responses = s.responses[1:]

	return next.resp, next.err
}

func (s *scriptedTransport) push(responses ...scripted) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses = append(s.responses, responses...)
}

func (s *scriptedTransport) Requests() []*glide.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*glide.Request(nil), s.requests...)
}

// page builds a list response carrying count incidents numbered from first.
// A negative total omits X-Total-Count.
func page(t *testing.T, total, first, count int) scripted {
	t.Helper()

	records := make([]incident, 0, count)
	for i := range count {
		n := first + i
		records = append(records, incident{
			Base:   glide.Base{SysID: "id" + strconv.Itoa(n)},
			Number: "INC" + strconv.Itoa(n),
		})
	}

	body, err := json.Marshal(map[string]interface{}{"result": records})
	require.NoError(t, err)

	headers := http.Header{}
	if total >= 0 {
		headers.Set("X-Total-Count", strconv.Itoa(total))
	}

	return scripted{resp: &glide.Response{StatusCode: http.StatusOK, Headers: headers, Body: body}}
}

func raw(status int, body string) scripted {
	return scripted{resp: &glide.Response{StatusCode: status, Headers: http.Header{}, Body: []byte(body)}}
}

func failure(err error) scripted {
	return scripted{err: err}
}

func testConfig() *glide.Config {
	return glide.NewConfig("dev0001.service-now.com", glide.Token("test-token"))
}

func newScriptedCursor(t *testing.T, opts ...glide.Option) (*glide.Cursor[incident], *scriptedTransport) {
	t.Helper()

	transport := &scriptedTransport{}
	opts = append([]glide.Option{glide.WithConfig(testConfig()), glide.WithTransport(transport)}, opts...)

	cursor, err := glide.New[incident]("incident", opts...)
	require.NoError(t, err)

	return cursor, transport
}

func numbers(items []incident) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Number)
	}

	return out
}

// recordingLogger captures log entries.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func (l *recordingLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logEntry

	for _, entry := range l.entries {
		if entry.level == level {
			out = append(out, entry)
		}
	}

	return out
}
