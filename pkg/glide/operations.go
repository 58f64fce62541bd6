package glide

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// envelope is the {"result": ...} wrapper around every Table API payload.
type envelope struct {
	Result json.RawMessage `json:"result"`
}

func decodeResult(codec Codec, body []byte, out interface{}) error {
	var env envelope

	err := codec.Unmarshal(body, &env)
	if err != nil {
		return fmt.Errorf("decoding envelope: %w", err)
	}

	raw := bytes.TrimSpace(env.Result)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ErrMissingResult
	}

	err = codec.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}

	return nil
}

func decodeBatch[T any](codec Codec, body []byte) ([]T, error) {
	var batch []T

	err := decodeResult(codec, body, &batch)
	if err != nil {
		return nil, err
	}

	return batch, nil
}

func decodeSingle[T any](codec Codec, body []byte) (T, error) {
	var item T

	err := decodeResult(codec, body, &item)
	if err != nil {
		var zero T

		return zero, err
	}

	return item, nil
}

// do sends req and rejects transports that return neither a response nor an error.
func (c *Cursor[T]) do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, ErrNoResponse
	}

	return resp, nil
}

// Get fetches one record by sys_id. It returns false when the request fails,
// the body cannot be decoded, or the record does not exist; Err holds the cause.
// Query state is not affected.
func (c *Cursor[T]) Get(ctx context.Context, sysID string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sysID == "" {
		return c.fail("get", ErrSysIDRequired)
	}

	return c.single(ctx, "get", http.MethodGet, c.recordPath(sysID), nil, false)
}

// Insert creates record and returns the server's representation of it, which
// carries the assigned sys_id.
func (c *Cursor[T]) Insert(ctx context.Context, record T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	body, err := c.codec.Marshal(record)
	if err != nil {
		return c.fail("insert", fmt.Errorf("%w: %w", ErrSerializeFailed, err))
	}

	return c.single(ctx, "insert", http.MethodPost, c.collectionPath(), body, false)
}

// Update replaces the record identified by sysID and returns the updated
// representation.
func (c *Cursor[T]) Update(ctx context.Context, record T, sysID string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sysID == "" {
		return c.fail("update", ErrSysIDRequired)
	}

	body, err := c.codec.Marshal(record)
	if err != nil {
		return c.fail("update", fmt.Errorf("%w: %w", ErrSerializeFailed, err))
	}

	return c.single(ctx, "update", http.MethodPut, c.recordPath(sysID), body, false)
}

// Delete removes the record identified by sysID. A successful response without
// a body (204) yields the zero record and true.
func (c *Cursor[T]) Delete(ctx context.Context, sysID string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sysID == "" {
		return c.fail("delete", ErrSysIDRequired)
	}

	return c.single(ctx, "delete", c.deleteMethod, c.recordPath(sysID), nil, true)
}

// single runs one non-paginated request. Callers hold mu.
func (c *Cursor[T]) single(ctx context.Context, op, method, path string, body []byte, allowEmpty bool) (T, bool) {
	resp, err := c.do(ctx, c.newRequest(method, path, nil, body))
	if err != nil {
		return c.fail(op, fmt.Errorf("%w: %s %s: %w", ErrFetchFailed, method, path, err))
	}

	if allowEmpty && len(bytes.TrimSpace(resp.Body)) == 0 {
		c.err = nil

		var zero T

		return zero, true
	}

	item, err := decodeSingle[T](c.codec, resp.Body)
	if err != nil {
		return c.fail(op, fmt.Errorf("%w: %s %s: %w", ErrDeserializeFailed, method, path, err))
	}

	c.err = nil

	return item, true
}

func (c *Cursor[T]) fail(op string, err error) (T, bool) {
	c.err = err

	c.logger.Debug("record operation failed", map[string]interface{}{
		"table":     c.table,
		"operation": op,
		"error":     err.Error(),
	})

	var zero T

	return zero, false
}
