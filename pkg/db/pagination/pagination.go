// Package pagination implements token-based pagination shared by list
// endpoints and repositories.
package pagination

import (
	"encoding/base64"
	"strconv"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Pagination struct {
	PageToken string
	PageSize  int32
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	TotalSize     int64  `json:"total_size,omitempty"`
}

// Limit clamps the requested page size into [1, MaxPageSize].
func (p Pagination) Limit() int {
	size := int(p.PageSize)
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return size
}

// Offset decodes the page token. An unreadable token behaves as page one.
func (p Pagination) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	raw, err := base64.URLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// NextToken returns the token for the page following the current one, or ""
// when the current page was short.
func (p Pagination) NextToken(returned int) string {
	if returned < p.Limit() {
		return ""
	}
	next := p.Offset() + returned
	return base64.URLEncoding.EncodeToString([]byte(strconv.Itoa(next)))
}
