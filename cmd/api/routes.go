// cmd/api/routes.go
package main

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the application middleware.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → logRequest → rateLimit → router
//
// Endpoints (the router redirects requests missing the trailing slash):
//
//	GET    /owners/        – list owners (filter, ordering, page)
//	POST   /owners/        – create an owner
//	GET    /owners/:id/    – retrieve an owner
//	PUT    /owners/:id/    – replace an owner
//	PATCH  /owners/:id/    – partially update an owner
//	DELETE /owners/:id/    – delete an owner and their cars
//	(the same set for /cars/)
//	GET    /healthcheck    – liveness and version info
//	GET    /metrics        – Prometheus exposition
//
// Background work started by the middleware stops when ctx is cancelled.
func (app *applicationDependencies) routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)
	router.Handler(http.MethodGet, "/metrics", app.metrics.handler())

	router.HandlerFunc(http.MethodGet, "/owners/", app.listOwnersHandler)
	router.HandlerFunc(http.MethodPost, "/owners/", app.createOwnerHandler)
	router.HandlerFunc(http.MethodGet, "/owners/:id/", app.showOwnerHandler)
	router.HandlerFunc(http.MethodPut, "/owners/:id/", app.replaceOwnerHandler)
	router.HandlerFunc(http.MethodPatch, "/owners/:id/", app.updateOwnerHandler)
	router.HandlerFunc(http.MethodDelete, "/owners/:id/", app.deleteOwnerHandler)

	router.HandlerFunc(http.MethodGet, "/cars/", app.listCarsHandler)
	router.HandlerFunc(http.MethodPost, "/cars/", app.createCarHandler)
	router.HandlerFunc(http.MethodGet, "/cars/:id/", app.showCarHandler)
	router.HandlerFunc(http.MethodPut, "/cars/:id/", app.replaceCarHandler)
	router.HandlerFunc(http.MethodPatch, "/cars/:id/", app.updateCarHandler)
	router.HandlerFunc(http.MethodDelete, "/cars/:id/", app.deleteCarHandler)

	return app.recoverPanic(app.requestID(app.logRequest(app.rateLimit(ctx, router))))
}
