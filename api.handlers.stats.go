package main

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (api *APIHandler) GetPopularity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counts := api.libraryService.Popularity(r.Context())
	total := len(counts)
	api.reply(w, r, http.StatusOK, "Books popularity computed successfully.", &total, counts)
}

// GetReturnRate provides the return rate rounded to two decimals.
func (api *APIHandler) GetReturnRate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rate := api.libraryService.ReturnRate(r.Context())
	api.reply(w, r, http.StatusOK, "Return rate computed successfully.", nil, map[string]float64{
		"return_rate_percent": math.Round(rate*100) / 100,
	})
}

func (api *APIHandler) GetAverageReadingTime(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	averages := api.libraryService.AverageReadingTime(r.Context())
	total := len(averages)
	api.reply(w, r, http.StatusOK, "Average reading time computed successfully.", &total, averages)
}

// GetReport provides the same document as the one exported.
func (api *APIHandler) GetReport(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report := api.libraryService.Report(r.Context())
	api.reply(w, r, http.StatusOK, "Statistics report built successfully.", nil, report)
}

// ExportStatistics writes the statistics document with the requested exporter.
func (api *APIHandler) ExportStatistics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ExportRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to export statistics", req, err)
		return
	}
	if err := api.validator.Validate(&req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to export statistics", err.Error(), err)
		return
	}
	if err := api.libraryService.ExportStatistics(r.Context(), req.Exporter, req.Destination); err != nil {
		api.replyError(w, r, StatusFromError(err), "failed to export statistics", err.Error(), err)
		return
	}
	api.reply(w, r, http.StatusOK, "Statistics exported successfully.", nil, req)
}

// FetchExport serves a statistics document stored by a storage backed exporter.
func (api *APIHandler) FetchExport(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doc, err := api.libraryService.FetchExport(r.Context(), ps.ByName("exporter"), ps.ByName("destination"))
	if err != nil {
		api.replyError(w, r, StatusFromError(err), "failed to fetch exported statistics", err.Error(), err)
		return
	}
	api.reply(w, r, http.StatusOK, "Exported statistics fetched successfully.", nil, json.RawMessage(doc))
}
