package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CreateAuthorRequest is the payload of an author creation.
type CreateAuthorRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateBookRequest is the payload of a book creation. The author is
// either an existing one referenced by id or a new one created by name.
type CreateBookRequest struct {
	Title      string `json:"title" validate:"required"`
	AuthorID   string `json:"authorId" validate:"required_without=AuthorName"`
	AuthorName string `json:"authorName" validate:"required_without=AuthorID"`
	Pages      int    `json:"pages" validate:"gte=0"`
}

// CheckoutRequest is the payload of a checkout. Date defaults to now.
type CheckoutRequest struct {
	Holder string     `json:"holder" validate:"required"`
	Date   *time.Time `json:"date"`
}

// ReturnRequest is the payload of a return. Date defaults to now.
type ReturnRequest struct {
	Date *time.Time `json:"date"`
}

// ExportRequest is the payload of a statistics export.
type ExportRequest struct {
	Exporter    string `json:"exporter" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

// RequestValidator wraps go-playground/validator and reports
// errors using the JSON names of the fields.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a ready to use RequestValidator.
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Validate checks the request and returns the first violation found.
func (rv *RequestValidator) Validate(req interface{}) error {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	switch e.Tag() {
	case "required", "required_without":
		return missingFieldError(e.Field())
	case "gte":
		return fmt.Errorf("%s must be greater than or equal to %s", e.Field(), e.Param())
	default:
		return fmt.Errorf("%s is invalid", e.Field())
	}
}
