// cmd/api/owners.go
// This file contains the HTTP handlers for the owners resource.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/carowners/api/internal/data"
	"github.com/carowners/api/internal/validator"
)

const msgDuplicatePhone = "owner with this phone already exists."

// listOwnersHandler handles GET /owners/.
// Supported query parameters: name, surname, phone, ordering, page.
func (app *applicationDependencies) listOwnersHandler(w http.ResponseWriter, r *http.Request) {
	searchable[data.Owner]{spec: data.OwnerSearch, list: app.models.Owners.GetAll}.handle(app, w, r)
}

// createOwnerHandler handles POST /owners/.
// It responds with the stored owner and a 201 Created status.
func (app *applicationDependencies) createOwnerHandler(w http.ResponseWriter, r *http.Request) {
	var input data.OwnerInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	owner := &data.Owner{}

	v := validator.New()
	input.Apply(v, owner, false)
	if v.Valid() {
		data.ValidateOwner(v, owner)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	err = app.models.Owners.Insert(r.Context(), owner)
	if err != nil {
		app.ownerWriteError(w, r, v, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/owners/%d/", owner.ID))

	err = app.writeJSON(w, http.StatusCreated, owner, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showOwnerHandler handles GET /owners/:id/.
func (app *applicationDependencies) showOwnerHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := app.fetchOwner(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, owner, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// replaceOwnerHandler handles PUT /owners/:id/; every field is required.
func (app *applicationDependencies) replaceOwnerHandler(w http.ResponseWriter, r *http.Request) {
	app.writeOwner(w, r, false)
}

// updateOwnerHandler handles PATCH /owners/:id/; only the fields present
// in the body are changed.
func (app *applicationDependencies) updateOwnerHandler(w http.ResponseWriter, r *http.Request) {
	app.writeOwner(w, r, true)
}

func (app *applicationDependencies) writeOwner(w http.ResponseWriter, r *http.Request, partial bool) {
	owner, ok := app.fetchOwner(w, r)
	if !ok {
		return
	}

	var input data.OwnerInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	input.Apply(v, owner, partial)
	if v.Valid() {
		data.ValidateOwner(v, owner)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	err = app.models.Owners.Update(r.Context(), owner)
	if err != nil {
		app.ownerWriteError(w, r, v, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, owner, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteOwnerHandler handles DELETE /owners/:id/. The owner's cars are
// removed with it.
func (app *applicationDependencies) deleteOwnerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Owners.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetchOwner loads the owner named by the :id parameter, writing a 404 or
// 500 response and returning false when it cannot.
func (app *applicationDependencies) fetchOwner(w http.ResponseWriter, r *http.Request) (*data.Owner, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	owner, err := app.models.Owners.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return owner, true
}

func (app *applicationDependencies) ownerWriteError(w http.ResponseWriter, r *http.Request, v *validator.Validator, err error) {
	switch {
	case errors.Is(err, data.ErrDuplicatePhone):
		v.AddError("phone", msgDuplicatePhone)
		app.failedValidationResponse(w, r, v)
	case errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
