package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// Cursor identifies the last row of a page in (effective date, created at, id)
// order. The next page starts strictly after it.
type Cursor struct {
	EffectiveDate time.Time
	CreatedAt     time.Time
	ID            string
}

// EncodeToken creates an opaque base64 token from a cursor.
func EncodeToken(c Cursor) string {
	tokenStr := strings.Join([]string{
		c.EffectiveDate.Format(timeFormat),
		c.CreatedAt.Format(timeFormat),
		c.ID,
	}, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	effectiveDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (effective date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Cursor{EffectiveDate: effectiveDate, CreatedAt: createdAt, ID: parts[2]}, nil
}
