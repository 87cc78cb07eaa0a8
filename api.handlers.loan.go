package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// CheckoutBook lends a book. The date is optional and defaults to now.
func (api *APIHandler) CheckoutBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.bookID(w, r, ps)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to checkout the book", req, err)
		return
	}
	if err := api.validator.Validate(&req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to checkout the book", err.Error(), err)
		return
	}
	loan, err := api.libraryService.Checkout(r.Context(), id, req.Holder, req.Date)
	if err != nil {
		api.replyError(w, r, StatusFromError(err), "failed to checkout the book", err.Error(), err)
		return
	}
	api.reply(w, r, http.StatusOK, "Book checked out successfully.", nil, loan)
}

// ReturnBook closes the loan of a book. An empty body means returned now.
func (api *APIHandler) ReturnBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.bookID(w, r, ps)
	if !ok {
		return
	}
	var req ReturnRequest
	err := DecodeRequestBody(r, &req)
	if err != nil && !errors.Is(err, ErrEmptyRequestBody) && !errors.Is(err, io.EOF) {
		api.replyError(w, r, http.StatusBadRequest, "failed to return the book", req, err)
		return
	}
	receipt, err := api.libraryService.Return(r.Context(), id, req.Date)
	if err != nil {
		api.replyError(w, r, StatusFromError(err), "failed to return the book", err.Error(), err)
		return
	}
	message := "Book returned on time."
	if !receipt.OnTime {
		message = "Book returned late."
	}
	api.reply(w, r, http.StatusOK, message, nil, receipt)
}

func (api *APIHandler) GetOpenLoans(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	loans := api.libraryService.GetOpenLoans(r.Context())
	total := len(loans)
	api.reply(w, r, http.StatusOK, "Open loans fetched successfully.", &total, loans)
}

func (api *APIHandler) GetLoansHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	history := api.libraryService.GetHistory(r.Context())
	total := len(history)
	api.reply(w, r, http.StatusOK, "Loans history fetched successfully.", &total, history)
}
