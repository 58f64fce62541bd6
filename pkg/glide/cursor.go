package glide

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/fivetwenty-io/glide-client/internal/constants"
)

// State is the position of a cursor in its query lifecycle.
type State int

// Cursor states.
const (
	// StateIdle means Query has not been called since construction, Reset or
	// the last clause change.
	StateIdle State = iota
	// StateActive means records may still be yielded.
	StateActive
	// StateExhausted means neither the local batch nor the server can supply
	// more records within the limit.
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Cursor is a stateful handle over the records of one remote table. It builds
// an encoded query, fetches records in batches and yields them one by one.
//
// A Cursor serializes its own operations but is meant to be used by a single
// goroutine.
type Cursor[T any] struct {
	mu sync.Mutex

	table        string
	encodedQuery string
	limit        int
	batchSize    int
	offset       int
	total        int
	hasTotal     bool
	started      bool
	lastEmpty    bool
	pending      []T
	err          error

	config       *Config
	transport    Transport
	codec        Codec
	logger       Logger
	deleteMethod string
}

// New creates a cursor for table. The configuration is resolved once from the
// configured provider, or from the SNOW_API_* environment variables when none
// is given.
func New[T any](table string, opts ...Option) (*Cursor[T], error) {
	if table == "" {
		return nil, ErrTableRequired
	}

	o := buildOptions(opts)

	provider := o.provider
	if provider == nil {
		provider = NewEnvProvider()
	}

	config, err := provider.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving config: %w", err)
	}

	return newCursor[T](table, config, o), nil
}

// NewWithConfig creates a cursor for table from an explicit configuration.
func NewWithConfig[T any](table string, config *Config, opts ...Option) *Cursor[T] {
	return newCursor[T](table, config, buildOptions(opts))
}

func newCursor[T any](table string, config *Config, o *options) *Cursor[T] {
	cursor := &Cursor[T]{
		table:        table,
		limit:        constants.DefaultQueryLimit,
		batchSize:    constants.DefaultBatchSize,
		config:       config,
		transport:    o.newTransport(config),
		codec:        o.codec,
		logger:       o.logger,
		deleteMethod: o.deleteMethod,
	}

	cursor.setLimit(o.limit)
	cursor.setBatchSize(o.batchSize)

	return cursor
}

// Table returns the table name.
func (c *Cursor[T]) Table() string {
	return c.table
}

// Config returns the configuration the cursor was built with.
func (c *Cursor[T]) Config() *Config {
	return c.config
}

// AddEncodedQuery appends a clause to the encoded query, joined with "^".
// The cursor must be queried again before Next reflects the new filter.
// Empty clauses are ignored.
func (c *Cursor[T]) AddEncodedQuery(clause string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if clause == "" {
		return
	}

	if c.encodedQuery == "" {
		c.encodedQuery = clause
	} else {
		c.encodedQuery += constants.QuerySeparator + clause
	}

	c.started = false
}

// EncodedQuery returns the accumulated encoded query.
func (c *Cursor[T]) EncodedQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.encodedQuery
}

// SetLimit sets the maximum number of records the cursor will ever yield.
// Values below 1 are clamped to 1. The batch size is lowered to match when
// it exceeds the new limit.
func (c *Cursor[T]) SetLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setLimit(limit)
}

// SetBatchSize sets the number of records requested per round-trip. Values
// below 1 are clamped to 1 and values above the limit to the limit.
func (c *Cursor[T]) SetBatchSize(batchSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setBatchSize(batchSize)
}

func (c *Cursor[T]) setLimit(limit int) {
	c.limit = max(limit, constants.MinPageSize)
	if c.batchSize > c.limit {
		c.batchSize = c.limit
	}
}

func (c *Cursor[T]) setBatchSize(batchSize int) {
	c.batchSize = min(max(batchSize, constants.MinPageSize), c.limit)
}

// Limit returns the query limit.
func (c *Cursor[T]) Limit() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.limit
}

// BatchSize returns the batch size.
func (c *Cursor[T]) BatchSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.batchSize
}

// Offset returns the number of records yielded so far.
func (c *Cursor[T]) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.offset
}

// TotalCount returns the server-reported number of matching records, if the
// server has reported one.
func (c *Cursor[T]) TotalCount() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.total, c.hasTotal
}

// State returns the lifecycle state of the cursor.
func (c *Cursor[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.started:
		return StateIdle
	case c.offset >= c.limit:
		return StateExhausted
	case len(c.pending) > 0:
		return StateActive
	case c.hasTotal && c.offset >= c.total, c.lastEmpty:
		return StateExhausted
	default:
		return StateActive
	}
}

// Err returns the error of the most recent network operation, or nil if it
// succeeded. Next and the single-record operations report failures only
// through Err.
func (c *Cursor[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.err
}

// Reset discards fetched records and pagination state so the cursor can be
// queried again from the first record. The encoded query and limits are kept.
func (c *Cursor[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.offset = 0
	c.total = 0
	c.hasTotal = false
	c.started = false
	c.lastEmpty = false
	c.pending = nil
	c.err = nil
}

// Query activates the cursor and always fetches the batch at the current
// offset, even when a previous query already reached its total. It must be
// called again after the encoded query changes.
func (c *Cursor[T]) Query(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.started = true

	return c.fetch(ctx)
}

// Next returns the next record. It returns false before Query, once the limit
// is reached, and when no further record can be obtained; in the last case
// Err tells exhaustion apart from failure.
func (c *Cursor[T]) Next(ctx context.Context) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	if !c.started || c.offset >= c.limit {
		return zero, false
	}

	if len(c.pending) == 0 {
		err := c.refill(ctx)
		if err != nil {
			c.logger.Warn("batch refill failed", map[string]interface{}{
				"table":  c.table,
				"offset": c.offset,
				"error":  err.Error(),
			})

			return zero, false
		}
	}

	if len(c.pending) == 0 {
		return zero, false
	}

	item := c.pending[0]
	c.pending[0] = zero
	c.pending = c.pending[1:]
	c.offset++

	return item, true
}

// All drains the cursor and returns every remaining record.
func (c *Cursor[T]) All(ctx context.Context) []T {
	var items []T

	for item := range c.Records(ctx) {
		items = append(items, item)
	}

	return items
}

// ForEach calls fn for every remaining record, stopping at the first error.
func (c *Cursor[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for item := range c.Records(ctx) {
		err := fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// Records returns an iterator over the remaining records.
func (c *Cursor[T]) Records(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := c.Next(ctx)
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// refill fetches the next page unless the offset has reached the reported
// total. Callers hold mu.
func (c *Cursor[T]) refill(ctx context.Context) error {
	if c.hasTotal && c.offset >= c.total {
		return nil
	}

	return c.fetch(ctx)
}

// fetch replaces the pending batch with the page at the current offset. On
// failure the pending batch, offset and total are left as they were.
func (c *Cursor[T]) fetch(ctx context.Context) error {
	query := url.Values{}
	query.Set(constants.ParamQuery, c.encodedQuery)
	query.Set(constants.ParamLimit, strconv.Itoa(c.batchSize))
	query.Set(constants.ParamOffset, strconv.Itoa(c.offset))

	resp, err := c.do(ctx, c.newRequest(http.MethodGet, c.collectionPath(), query, nil))
	if err != nil {
		c.err = fmt.Errorf("%w: fetching batch from %s: %w", ErrFetchFailed, c.table, err)

		return c.err
	}

	batch, err := decodeBatch[T](c.codec, resp.Body)
	if err != nil {
		c.err = fmt.Errorf("%w: batch from %s: %w", ErrDeserializeFailed, c.table, err)

		return c.err
	}

	if total, ok := parseTotalCount(resp.Headers); ok {
		c.total = total
		c.hasTotal = true
	}

	c.pending = batch
	c.lastEmpty = len(batch) == 0
	c.err = nil

	c.logger.Debug("fetched batch", map[string]interface{}{
		"table":  c.table,
		"offset": c.offset,
		"size":   len(batch),
		"total":  c.total,
	})

	return nil
}

func (c *Cursor[T]) newRequest(method, path string, query url.Values, body []byte) *Request {
	headers := map[string]string{
		constants.HeaderAccept:      constants.MediaTypeJSON,
		constants.HeaderContentType: constants.MediaTypeJSON,
	}

	if c.config != nil && c.config.Credentials != nil {
		headers[constants.HeaderAuthorization] = c.config.Credentials.AuthorizationHeader()
	}

	req := &Request{
		Method:  method,
		Path:    path,
		Query:   query,
		Headers: headers,
	}

	if body != nil {
		req.Body = body
	}

	return req
}

func (c *Cursor[T]) collectionPath() string {
	return constants.APIPathTable + url.PathEscape(c.table)
}

func (c *Cursor[T]) recordPath(sysID string) string {
	return c.collectionPath() + "/" + url.PathEscape(sysID)
}

// parseTotalCount reads X-Total-Count. A missing or malformed header yields false.
func parseTotalCount(headers http.Header) (int, bool) {
	raw := strings.TrimSpace(headers.Get(constants.HeaderTotalCount))
	if raw == "" {
		return 0, false
	}

	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, false
	}

	return total, true
}
