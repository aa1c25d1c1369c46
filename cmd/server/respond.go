package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Simplici0/pricesense/internal/dashboard"
	"github.com/Simplici0/pricesense/internal/kpi"
	"github.com/Simplici0/pricesense/internal/store"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// apiError is a client error with a fixed status code.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(format string, args ...any) error {
	return &apiError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// respondError maps domain and validation errors onto HTTP status codes.
// Anything unrecognised is logged and reported as a 500.
func (s *server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr   *apiError
		valErrs  validator.ValidationErrors
		inputErr *kpi.InputError
	)

	switch {
	case errors.As(err, &apiErr):
		writeJSON(w, apiErr.status, envelope{Message: apiErr.message})
	case errors.As(err, &valErrs):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Validation error", Errors: validationErrors(valErrs)})
	case errors.As(err, &inputErr):
		fields := make([]fieldError, 0, len(inputErr.Fields))
		for _, f := range inputErr.Fields {
			fields = append(fields, fieldError{Field: f, Message: inputErr.Reason})
		}
		writeJSON(w, http.StatusBadRequest, envelope{Message: inputErr.Kind.Error(), Errors: fields})
	case errors.Is(err, errInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid email or password"})
	case errors.Is(err, store.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, envelope{Message: "User already exists with this email"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Message: "Resource not found"})
	case errors.Is(err, dashboard.ErrTooFewScenarios):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "At least 2 analyses are required for comparison"})
	default:
		s.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Internal server error"})
	}
}

func (s *server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return badRequest("Invalid JSON body: %v", err)
	}
	return s.validate.Struct(dst)
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationErrors(errs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email"
	case "uuid4":
		return f + " must be a valid id"
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters long", f, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at least %s items", f, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", f, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", f, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", f, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", f, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", f, snakeCase(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return f + " is invalid"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
