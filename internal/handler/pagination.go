package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/tasktracker/internal/domain"
)

// Page is the envelope of every paginated list response. Next and Previous
// are request-relative URLs that keep the other query parameters, or null
// at either end.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPage[T any](r *http.Request, p domain.PaginationParams, total int64, results []T) Page[T] {
	page := Page[T]{Count: total, Results: results}
	if p.HasNext(total) {
		u := pageURL(r.URL, p.Page+1)
		page.Next = &u
	}
	if p.HasPrevious() {
		u := pageURL(r.URL, p.Page-1)
		page.Previous = &u
	}
	return page
}

func pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return u.Path + "?" + q.Encode()
}

// bindQuery binds one optional form-style query parameter into dest, which
// must be a pointer to a pointer (e.g. **bool, **[]uuid.UUID). A value that
// does not parse becomes a field error naming the parameter. A parameter whose
// values are all empty (?completed=) is treated as absent.
func bindQuery(q url.Values, name string, dest any) error {
	if allEmpty(q[name]) {
		return nil
	}
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return domain.NewFieldError(name, "invalid query parameter value")
	}
	return nil
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

// bindPagination reads ?page= and ?limit=.
func bindPagination(q url.Values) (domain.PaginationParams, error) {
	var page, limit *int
	if err := bindQuery(q, "page", &page); err != nil {
		return domain.PaginationParams{}, err
	}
	if err := bindQuery(q, "limit", &limit); err != nil {
		return domain.PaginationParams{}, err
	}
	return domain.NewPaginationParams(page, limit), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
