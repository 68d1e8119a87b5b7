package models

import "time"

// AuditFields mirrors the audit columns shared by persisted rows.
type AuditFields struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int64     `db:"version"`
}
