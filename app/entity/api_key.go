package entity

import (
	"database/sql"
	"time"
)

type APIKey struct {
	ID          string
	Name        string
	Value       string
	Description string
	UsageCount  int64
	UsageLimit  sql.NullInt64
	CreatedAt   time.Time
}

// Clone returns a copy that shares no state with the receiver.
func (k *APIKey) Clone() *APIKey {
	if k == nil {
		return nil
	}
	c := *k
	return &c
}
