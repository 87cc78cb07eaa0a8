package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupLibraryRoutes injects catalog, loans and statistics api endpoints.
func (api *APIHandler) SetupLibraryRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))

	router.POST("/v1/authors", m.public(api.CreateAuthor))
	router.GET("/v1/authors", m.public(api.GetAllAuthors))

	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneBook))
	router.DELETE("/v1/books/:id", m.public(api.DeleteOneBook))
	router.GET("/v1/search/books", m.public(api.SearchBooks))

	router.POST("/v1/books/:id/checkout", m.public(api.CheckoutBook))
	router.POST("/v1/books/:id/return", m.public(api.ReturnBook))
	router.GET("/v1/loans/open", m.public(api.GetOpenLoans))
	router.GET("/v1/loans/history", m.public(api.GetLoansHistory))

	router.GET("/v1/stats/popularity", m.public(api.GetPopularity))
	router.GET("/v1/stats/return-rate", m.public(api.GetReturnRate))
	router.GET("/v1/stats/reading-time", m.public(api.GetAverageReadingTime))
	router.GET("/v1/stats/report", m.public(api.GetReport))
	router.POST("/v1/stats/export", m.public(api.ExportStatistics))
	router.GET("/v1/stats/exports/:exporter/:destination", m.public(api.FetchExport))
	return router
}
