// Package pagination parses offset/limit search requests and derives the
// navigation links returned with every search result.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidParam is returned for malformed limit or offset values.
var ErrInvalidParam = errors.New("invalid pagination parameter")

// Config holds the default and maximum page sizes.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Normalize fills zero values with 20/100 and keeps the default within the maximum.
func (c Config) Normalize() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 20
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 100
	}
	if c.DefaultLimit > c.MaxLimit {
		c.DefaultLimit = c.MaxLimit
	}
	return c
}

// Request is a validated search request.
type Request struct {
	Query  string
	Limit  int
	Offset int
	Sort   string
}

// ParseRequest reads query, limit, offset and sort from URL values. Missing
// values take their defaults; a limit above the maximum is clamped.
func ParseRequest(values url.Values, cfg Config) (Request, error) {
	cfg = cfg.Normalize()
	req := Request{
		Query:  values.Get("query"),
		Sort:   strings.TrimSpace(values.Get("sort")),
		Limit:  cfg.DefaultLimit,
		Offset: 0,
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Request{}, fmt.Errorf("%w: limit must be a positive integer, got %q", ErrInvalidParam, raw)
		}
		req.Limit = min(n, cfg.MaxLimit)
	}
	if raw := strings.TrimSpace(values.Get("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Request{}, fmt.Errorf("%w: offset must be a non-negative integer, got %q", ErrInvalidParam, raw)
		}
		req.Offset = n
	}
	return req, nil
}

// Meta describes the page that was served.
type Meta struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
	Total  int64  `json:"total"`
}

// NewMeta pairs a request with the total number of matching documents.
func NewMeta(r Request, total int64) Meta {
	return Meta{Query: r.Query, Limit: r.Limit, Offset: r.Offset, Sort: r.Sort, Total: total}
}
