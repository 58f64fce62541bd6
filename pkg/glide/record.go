package glide

import "context"

// Identifiable is implemented by record types that carry their sys_id.
type Identifiable interface {
	GetSysID() string
}

// Base gives a record type its sys_id field. Embed it in record structs:
//
//	type Incident struct {
//	  glide.Base
//	  Number           string `json:"number"`
//	  ShortDescription string `json:"short_description"`
//	}
type Base struct {
	SysID string `json:"sys_id,omitempty" yaml:"sys_id,omitempty"`
}

// GetSysID implements Identifiable.
func (b Base) GetSysID() string {
	return b.SysID
}

// UpdateRecord updates record in place on the server using its own sys_id.
func UpdateRecord[T Identifiable](ctx context.Context, cursor *Cursor[T], record T) (T, bool) {
	return cursor.Update(ctx, record, record.GetSysID())
}

// DeleteRecord deletes record using its own sys_id.
func DeleteRecord[T Identifiable](ctx context.Context, cursor *Cursor[T], record T) (T, bool) {
	return cursor.Delete(ctx, record.GetSysID())
}
