package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// replyError logs the failure then sends the error envelope.
func (api *APIHandler) replyError(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, err error) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	logger := api.GetLoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Int("response.status", status), zap.Error(err))
	} else {
		logger.Warn(message, zap.Int("response.status", status), zap.Error(err))
	}
	errResp := NewAPIError(requestID, status, message, data)
	if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
		logger.Error("failed to send error response", zap.Error(err))
	}
}

// reply sends the success envelope.
func (api *APIHandler) reply(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response", zap.Error(err))
	}
}

// bookID extracts and checks the book id path parameter.
func (api *APIHandler) bookID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (string, bool) {
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, BookIDPrefix); !ok {
		api.replyError(w, r, http.StatusBadRequest, "book id provided is not valid", EmptyData, nil)
		return id, false
	}
	return id, true
}

func (api *APIHandler) CreateAuthor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateAuthorRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to create the author", req, err)
		return
	}
	if err := api.validator.Validate(&req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to create the author", err.Error(), err)
		return
	}
	author := api.libraryService.AddAuthor(r.Context(), req.Name)
	api.reply(w, r, http.StatusCreated, "Author created successfully.", nil, author)
}

func (api *APIHandler) GetAllAuthors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	authors := api.libraryService.GetAllAuthors(r.Context())
	total := len(authors)
	api.reply(w, r, http.StatusOK, "All authors fetched successfully.", &total, authors)
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateBookRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to create the book", req, err)
		return
	}
	if err := api.validator.Validate(&req); err != nil {
		api.replyError(w, r, http.StatusBadRequest, "failed to create the book", err.Error(), err)
		return
	}
	book, err := api.libraryService.AddBook(r.Context(), req)
	if err != nil {
		api.replyError(w, r, StatusFromError(err), "failed to create the book", err.Error(), err)
		return
	}
	api.reply(w, r, http.StatusCreated, "Book created successfully.", nil, book)
}

func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	books := api.libraryService.GetAllBooks(r.Context())
	total := len(books)
	api.reply(w, r, http.StatusOK, "All books fetched successfully.", &total, books)
}

func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.bookID(w, r, ps)
	if !ok {
		return
	}
	book, err := api.libraryService.GetOneBook(r.Context(), id)
	if err != nil {
		api.replyError(w, r, StatusFromError(err), "book does not exist", EmptyData, err)
		return
	}
	api.reply(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := api.bookID(w, r, ps)
	if !ok {
		return
	}
	book, err := api.libraryService.RemoveBook(r.Context(), id)
	if err != nil {
		api.replyError(w, r, StatusFromError(err), "book does not exist", EmptyData, err)
		return
	}
	api.reply(w, r, http.StatusOK, "Book deleted successfully.", nil, book)
}

// SearchBooks looks up the catalog by `title` or by `author` query parameter.
func (api *APIHandler) SearchBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	title, author := q.Get("title"), q.Get("author")
	if title == "" && author == "" {
		err := missingFieldError("title or author")
		api.replyError(w, r, http.StatusBadRequest, "failed to search books", err.Error(), err)
		return
	}
	books := api.libraryService.SearchBooks(r.Context(), title, author)
	total := len(books)
	api.reply(w, r, http.StatusOK, "Books searched successfully.", &total, books)
}
