package httpx

import (
	"net/http"
	"strconv"
)

// pageBounds holds the default and maximum page size of a list endpoint.
type pageBounds struct {
	def, max int
}

// parse reads ?limit= and ?offset=. Garbage falls back to the default, the
// limit is clamped to [1, max] and a negative offset becomes zero.
func (b pageBounds) parse(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit = atoiOr(q.Get("limit"), b.def)
	offset = max(atoiOr(q.Get("offset"), 0), 0)
	return min(max(limit, 1), max(b.max, 1)), offset
}

func atoiOr(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
