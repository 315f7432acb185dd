package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

// Links are the navigation URLs attached to a search envelope. Next and Prev
// are nil when out of range.
type Links struct {
	Self  string
	First string
	Last  string
	Next  *string
	Prev  *string
}

// BuildLinks derives the navigation links for meta. base is scheme, host and
// path without a query string; rawQuery is the request's original query.
func BuildLinks(base, rawQuery string, meta Meta) Links {
	base = strings.TrimSuffix(base, "/")
	self := base
	if rawQuery != "" {
		self += "?" + rawQuery
	}

	limit := int64(meta.Limit)
	if limit < 1 {
		limit = 1
	}
	offset := int64(meta.Offset)

	l := Links{
		Self:  strings.TrimSuffix(self, "/"),
		First: scroll(base, meta, 0),
		Last:  scroll(base, meta, lastOffset(meta.Total, limit)),
	}
	// compared without summing offset and limit, which may overflow
	if meta.Total-limit > offset {
		next := scroll(base, meta, offset+limit)
		l.Next = &next
	}
	if offset >= limit {
		prev := scroll(base, meta, offset-limit)
		l.Prev = &prev
	}
	return l
}

// lastOffset is the offset of the final page, never negative.
func lastOffset(total, limit int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total - 1) / limit * limit
}

func scroll(base string, meta Meta, offset int64) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("?query=")
	b.WriteString(url.QueryEscape(meta.Query))
	b.WriteString("&sort=")
	b.WriteString(url.QueryEscape(meta.Sort))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(meta.Limit))
	b.WriteString("&offset=")
	b.WriteString(strconv.FormatInt(offset, 10))
	return b.String()
}
