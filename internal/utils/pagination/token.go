// Package pagination encodes keyset cursors for list endpoints.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// EncodeToken builds an opaque cursor from the sort key of the last row on a page.
// Periods sort by period start, ties broken by creation time.
func EncodeToken(sortKey time.Time, createdAt time.Time) string {
	tokenStr := sortKey.Format(timeFormat) + "|" + createdAt.Format(timeFormat)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a cursor produced by EncodeToken.
func DecodeToken(token string) (time.Time, time.Time, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	sortPart, createdPart, ok := strings.Cut(string(decodedBytes), "|")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (split)")
	}

	sortKey, err := time.Parse(timeFormat, sortPart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (sort key parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, createdPart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	return sortKey, createdAt, nil
}
