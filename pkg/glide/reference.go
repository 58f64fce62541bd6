package glide

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Reference points at a single record of a table. Reference fields in Table
// API responses decode into it from their link:
//
//	{"link": "https://host/api/now/table/sys_user/6816f79c...", "value": "6816f79c..."}
type Reference struct {
	Table string `json:"table"  yaml:"table"`
	SysID string `json:"sys_id" yaml:"sys_id"`
}

// ParseReference extracts the table and sys_id from the last two
// "/"-separated segments of link. Links without two non-empty trailing
// segments yield the zero Reference.
func ParseReference(link string) Reference {
	idx := strings.LastIndex(link, "/")
	if idx < 0 {
		return Reference{}
	}

	sysID := link[idx+1:]
	head := link[:idx]
	table := head[strings.LastIndex(head, "/")+1:]

	if table == "" || sysID == "" {
		return Reference{}
	}

	return Reference{Table: table, SysID: sysID}
}

// IsZero reports whether r points nowhere.
func (r Reference) IsZero() bool {
	return r.Table == "" && r.SysID == ""
}

// String returns "table/sys_id".
func (r Reference) String() string {
	return r.Table + "/" + r.SysID
}

// UnmarshalJSON never fails: anything that is not a reference object with a
// parsable link (or an already decoded table and sys_id) becomes the zero
// Reference. Empty reference fields arrive as "" and decode the same way.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var raw struct {
		Link  string `json:"link"`
		Table string `json:"table"`
		SysID string `json:"sys_id"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		*r = Reference{}

		return nil
	}

	if raw.Link == "" && raw.Table != "" && raw.SysID != "" {
		*r = Reference{Table: raw.Table, SysID: raw.SysID}

		return nil
	}

	*r = ParseReference(raw.Link)

	return nil
}

// ResolveCursor builds a cursor over the referenced table filtered to the
// referenced sys_id and queries it.
func ResolveCursor[T any](ctx context.Context, ref Reference, opts ...Option) (*Cursor[T], error) {
	cursor, err := New[T](ref.Table, opts...)
	if err != nil {
		return nil, err
	}

	cursor.AddEncodedQuery(Equals("sys_id", ref.SysID))

	err = cursor.Query(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving reference %s: %w", ref, err)
	}

	return cursor, nil
}

// ResolveItem fetches the referenced record. A missing record is reported as
// ErrRecordNotFound, wrapping the underlying cause when there is one.
func ResolveItem[T any](ctx context.Context, ref Reference, opts ...Option) (T, error) {
	var zero T

	cursor, err := New[T](ref.Table, opts...)
	if err != nil {
		return zero, err
	}

	item, ok := cursor.Get(ctx, ref.SysID)
	if !ok {
		if cause := cursor.Err(); cause != nil {
			return zero, fmt.Errorf("%w: %s: %w", ErrRecordNotFound, ref, cause)
		}

		return zero, fmt.Errorf("%w: %s", ErrRecordNotFound, ref)
	}

	return item, nil
}
