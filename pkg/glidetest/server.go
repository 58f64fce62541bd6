// Package glidetest provides an in-memory Table API server for tests.
//
// The server understands the subset of encoded queries produced by the glide
// clause builders (=, !=, LIKE, STARTSWITH, IN, ISEMPTY, ISNOTEMPTY, ^OR and
// ORDERBY/ORDERBYDESC), paginates with sysparm_limit and sysparm_offset and
// reports X-Total-Count like a real instance.
package glidetest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

// Record is a row as stored by the server.
type Record = map[string]interface{}

// RecordedRequest describes a request the server received.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	Body          []byte
}

// Server is an httptest.Server backed by in-memory tables.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	tables        map[string][]Record
	requests      []RecordedRequest
	authorization string
	failStatus    int
	omitTotal     bool
}

// NewServer starts a server with no tables.
func NewServer() *Server {
	s := &Server{tables: make(map[string][]Record)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+constants.APIPathTable+"{table}", s.handleList)
	mux.HandleFunc("POST "+constants.APIPathTable+"{table}", s.handleInsert)
	mux.HandleFunc("GET "+constants.APIPathTable+"{table}/{sys_id}", s.handleGet)
	mux.HandleFunc("PUT "+constants.APIPathTable+"{table}/{sys_id}", s.handleUpdate)
	mux.HandleFunc("PATCH "+constants.APIPathTable+"{table}/{sys_id}", s.handleUpdate)
	mux.HandleFunc("DELETE "+constants.APIPathTable+"{table}/{sys_id}", s.handleDelete)

	s.Server = httptest.NewServer(s.middleware(mux))

	return s
}

// Config returns a configuration pointing at the server with placeholder
// token credentials.
func (s *Server) Config() *glide.Config {
	return glide.NewConfig(s.URL, glide.Token("glidetest"))
}

// RequireAuthorization makes every request without exactly this Authorization
// header fail with 401.
func (s *Server) RequireAuthorization(header string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authorization = header
}

// FailWith makes every request fail with status until it is called with 0.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failStatus = status
}

// OmitTotalCount stops the server from sending X-Total-Count.
func (s *Server) OmitTotalCount(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.omitTotal = omit
}

// Seed appends records to table, assigning a sys_id to those without one, and
// returns the sys_ids in order.
func (s *Server) Seed(table string, records ...Record) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(records))

	for _, record := range records {
		stored := copyRecord(record)
		if cast.ToString(stored["sys_id"]) == "" {
			stored["sys_id"] = NewSysID()
		}

		s.tables[table] = append(s.tables[table], stored)
		ids = append(ids, cast.ToString(stored["sys_id"]))
	}

	return ids
}

// Records returns a copy of the rows of table.
func (s *Server) Records(table string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]Record, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		rows = append(rows, copyRecord(row))
	}

	return rows
}

// Requests returns the requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// NewSysID returns a 32 character hex identifier.
func NewSysID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get(constants.HeaderAuthorization),
			Body:          body,
		})
		authorization := s.authorization
		failStatus := s.failStatus
		s.mu.Unlock()

		if authorization != "" && r.Header.Get(constants.HeaderAuthorization) != authorization {
			writeError(w, http.StatusUnauthorized, "User Not Authenticated", "Required to provide Auth information")

			return
		}

		if failStatus != 0 {
			writeError(w, failStatus, http.StatusText(failStatus), "injected failure")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := parseQuery(query.Get(constants.ParamQuery))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query", err.Error())

		return
	}

	s.mu.Lock()
	matched := make([]Record, 0)

	for _, row := range s.tables[r.PathValue("table")] {
		if filter.matches(row) {
			matched = append(matched, copyRecord(row))
		}
	}

	omitTotal := s.omitTotal
	s.mu.Unlock()

	filter.sort(matched)

	total := len(matched)
	offset := intParam(query, constants.ParamOffset, 0)
	limit := intParam(query, constants.ParamLimit, total)

	page := make([]Record, 0)
	if offset < total {
		page = matched[offset:min(offset+limit, total)]
	}

	if !omitTotal {
		w.Header().Set(constants.HeaderTotalCount, strconv.Itoa(total))
	}

	writeResult(w, http.StatusOK, page)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, row := s.find(r.PathValue("table"), r.PathValue("sys_id"))
	if row == nil {
		writeNotFound(w, r)

		return
	}

	writeResult(w, http.StatusOK, copyRecord(row))
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var record Record

	err := json.NewDecoder(r.Body).Decode(&record)
	if err != nil || record == nil {
		writeError(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON object")

		return
	}

	record["sys_id"] = NewSysID()

	s.mu.Lock()
	table := r.PathValue("table")
	s.tables[table] = append(s.tables[table], record)
	created := copyRecord(record)
	s.mu.Unlock()

	writeResult(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var changes Record

	if len(strings.TrimSpace(string(body))) > 0 {
		err := json.Unmarshal(body, &changes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON object")

			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, row := s.find(r.PathValue("table"), r.PathValue("sys_id"))
	if row == nil {
		writeNotFound(w, r)

		return
	}

	for key, value := range changes {
		if key == "sys_id" {
			continue
		}

		row[key] = value
	}

	writeResult(w, http.StatusOK, copyRecord(row))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := r.PathValue("table")

	idx, row := s.find(table, r.PathValue("sys_id"))
	if row == nil {
		writeNotFound(w, r)

		return
	}

	s.tables[table] = append(s.tables[table][:idx], s.tables[table][idx+1:]...)

	w.WriteHeader(http.StatusNoContent)
}

// find locates a row. Callers hold mu.
func (s *Server) find(table, sysID string) (int, Record) {
	for idx, row := range s.tables[table] {
		if cast.ToString(row["sys_id"]) == sysID {
			return idx, row
		}
	}

	return -1, nil
}

func writeResult(w http.ResponseWriter, status int, result interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.MediaTypeJSON)
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
}

func writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set(constants.HeaderContentType, constants.MediaTypeJSON)
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"message": message,
			"detail":  detail,
		},
		"status": "failure",
	})
}

func writeNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "No Record found",
		"Record doesn't exist or ACL restricts the record retrieval: "+r.PathValue("sys_id"))
}

func intParam(query url.Values, key string, fallback int) int {
	value, err := strconv.Atoi(query.Get(key))
	if err != nil || value < 0 {
		return fallback
	}

	return value
}

func copyRecord(record Record) Record {
	out := make(Record, len(record))
	for key, value := range record {
		out[key] = value
	}

	return out
}
