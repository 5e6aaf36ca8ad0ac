// cmd/api/search.go
// This file contains the list endpoint shared by every entity: query
// parameter validation, filtering, ordering and page-number pagination.
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carowners/api/internal/data"
	"github.com/carowners/api/internal/validator"
)

// page is the paginated list body: {count, next, previous, results}.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []*T    `json:"results"`
}

// searchable serves a filtered, ordered, paginated list of one entity.
type searchable[T any] struct {
	spec data.SearchSpec
	list func(ctx context.Context, filter data.Filter, filters data.Filters) ([]*T, data.Metadata, error)
}

// handle runs one search: parse and validate the query parameters, fetch
// the requested page, then respond with the page, the empty-result message,
// or an error.
func (s searchable[T]) handle(app *applicationDependencies, w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	v := validator.New()
	filter := s.spec.ParseFilter(qs, v)
	sort := s.spec.ParseSort(qs, v)
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	current, ok := app.readPage(qs)
	if !ok {
		app.invalidPageResponse(w, r)
		return
	}

	items, meta, err := s.list(r.Context(), filter, data.Filters{
		Page:         current,
		PageSize:     app.config.pageSize,
		Sort:         sort,
		SortSafeList: s.spec.SortSafeList(),
	})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if meta.TotalRecords == 0 {
		err = app.writeJSON(w, http.StatusOK, fmt.Sprintf("There is no %s with given data", s.spec.Entity), nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if current > meta.LastPage {
		app.invalidPageResponse(w, r)
		return
	}

	body := page[T]{Count: meta.TotalRecords, Results: items}
	if current < meta.LastPage {
		next := absoluteURL(r, current+1)
		body.Next = &next
	}
	if current > meta.FirstPage {
		previous := absoluteURL(r, current-1)
		body.Previous = &previous
	}

	err = app.writeJSON(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
