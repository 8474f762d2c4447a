// internal/app/system/paging/paging.go
package paging

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultSize is the page size used when the client sends none.
const DefaultSize = 10

// MaxSize caps the page size when no other cap is configured.
const MaxSize = 100

// Request is a zero-based offset page request.
type Request struct {
	Page int
	Size int
}

// Skip returns the number of rows before this page, for Find().SetSkip().
func (p Request) Skip() int64 { return int64(p.Page) * int64(p.Size) }

// MaxPage is the largest page index for size whose row offset, and the
// offset of the page after it, still fit in an int64.
func MaxPage(size int) int64 {
	if size <= 0 {
		return 0
	}
	return math.MaxInt64/int64(size) - 1
}

// InRange reports whether Page is non-negative and no larger than MaxPage.
func (p Request) InRange() bool {
	return p.Page >= 0 && int64(p.Page) <= MaxPage(p.Size)
}

// Limit returns the page size as int64, for Find().SetLimit().
func (p Request) Limit() int64 { return int64(p.Size) }

// Parse reads the "page" and "size" query parameters. Missing values fall
// back to page 0 and defSize; sizes above maxSize are capped. Malformed or
// out-of-range values are reported by field name so the boundary can answer
// with a field map.
func Parse(r *http.Request, defSize, maxSize int) (Request, map[string]string) {
	if defSize <= 0 {
		defSize = DefaultSize
	}
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	req := Request{Page: 0, Size: defSize}
	problems := map[string]string{}

	if s := query.Get(r, "page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			problems["page"] = "page must be a non-negative integer"
		} else {
			req.Page = n
		}
	}
	if s := query.Get(r, "size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			problems["size"] = "size must be a positive integer"
		} else {
			req.Size = n
		}
	}
	if req.Size > maxSize {
		req.Size = maxSize
	}
	if _, bad := problems["page"]; !bad && !req.InRange() {
		problems["page"] = "page is too large"
		req.Page = 0
	}
	if len(problems) > 0 {
		return req, problems
	}
	return req, nil
}

// Page is one page of results in the wire shape clients expect.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPage assembles a Page from the rows fetched for req and the total
// matching count. Content is never nil so it encodes as [].
func NewPage[T any](rows []T, req Request, total int64) Page[T] {
	if rows == nil {
		rows = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       rows,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
		Last:          req.Page+1 >= pages,
	}
}

// Map converts the content of p, keeping the paging fields.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, fn(v))
	}
	return Page[U]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Last:          p.Last,
	}
}
