// cmd/api/cars.go
// This file contains the HTTP handlers for the cars resource.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/carowners/api/internal/data"
	"github.com/carowners/api/internal/validator"
)

// listCarsHandler handles GET /cars/.
// Supported query parameters: brand, model, production_date, owner, ordering, page.
func (app *applicationDependencies) listCarsHandler(w http.ResponseWriter, r *http.Request) {
	searchable[data.Car]{spec: data.CarSearch, list: app.models.Cars.GetAll}.handle(app, w, r)
}

// createCarHandler handles POST /cars/.
func (app *applicationDependencies) createCarHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CarInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	car := &data.Car{}

	v := validator.New()
	input.Apply(v, car, false)
	if v.Valid() {
		data.ValidateCar(v, car)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	err = app.models.Cars.Insert(r.Context(), car)
	if err != nil {
		app.carWriteError(w, r, v, car, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/cars/%d/", car.ID))

	err = app.writeJSON(w, http.StatusCreated, car, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showCarHandler handles GET /cars/:id/.
func (app *applicationDependencies) showCarHandler(w http.ResponseWriter, r *http.Request) {
	car, ok := app.fetchCar(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, car, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// replaceCarHandler handles PUT /cars/:id/.
func (app *applicationDependencies) replaceCarHandler(w http.ResponseWriter, r *http.Request) {
	app.writeCar(w, r, false)
}

// updateCarHandler handles PATCH /cars/:id/.
func (app *applicationDependencies) updateCarHandler(w http.ResponseWriter, r *http.Request) {
	app.writeCar(w, r, true)
}

func (app *applicationDependencies) writeCar(w http.ResponseWriter, r *http.Request, partial bool) {
	car, ok := app.fetchCar(w, r)
	if !ok {
		return
	}

	var input data.CarInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	input.Apply(v, car, partial)
	if v.Valid() {
		data.ValidateCar(v, car)
	}
	if !v.Valid() {
		app.failedValidationResponse(w, r, v)
		return
	}

	err = app.models.Cars.Update(r.Context(), car)
	if err != nil {
		app.carWriteError(w, r, v, car, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, car, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteCarHandler handles DELETE /cars/:id/.
func (app *applicationDependencies) deleteCarHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Cars.Delete(r.Context(), id)
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

func (app *applicationDependencies) fetchCar(w http.ResponseWriter, r *http.Request) (*data.Car, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	car, err := app.models.Cars.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}
	return car, true
}

// carWriteError reports store constraint failures as field validation errors.
func (app *applicationDependencies) carWriteError(w http.ResponseWriter, r *http.Request, v *validator.Validator, car *data.Car, err error) {
	switch {
	case errors.Is(err, data.ErrOwnerNotFound):
		v.AddError("owner", data.OwnerNotFoundMessage(car.OwnerID))
		app.failedValidationResponse(w, r, v)
	case errors.Is(err, data.ErrValueOutOfRange):
		v.AddError("total_cost", "Ensure that there are no more than 10 digits in total.")
		app.failedValidationResponse(w, r, v)
	case errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
