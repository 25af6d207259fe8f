package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/tasktracker/internal/domain"
)

// newValidator returns a validator that reports fields by their JSON names.
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

// decode reads a JSON body into dst and runs struct validation on it.
// An empty body decodes as {} so missing fields surface as field errors.
// Unknown fields are ignored: clients may send read-only fields back.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := decodeBody(r, dst); err != nil {
		return err
	}
	return s.check(dst)
}

// decodePartial reads a JSON body for a partial update. Required-field
// rules do not apply because absent fields mean "leave unchanged".
func (s *Server) decodePartial(r *http.Request, dst any) error {
	return decodeBody(r, dst)
}

// nonNullable is implemented by request bodies whose fields may be omitted
// but not sent as an explicit JSON null.
type nonNullable interface {
	nonNullFields() []string
}

func decodeBody(r *http.Request, dst any) error {
	raw, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return err
	case err != nil:
		return fmt.Errorf("%w: read body: %v", domain.ErrValidation, err)
	case len(bytes.TrimSpace(raw)) == 0:
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	err = json.Unmarshal(raw, dst)
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return domain.NewFieldError(typeErr.Field, "expected "+typeErr.Type.String()+", got "+typeErr.Value)
	case err != nil:
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrValidation, err)
	}

	if nn, ok := dst.(nonNullable); ok {
		return rejectNulls(raw, nn.nonNullFields())
	}
	return nil
}

// rejectNulls returns a field error for the first of fields that raw sets
// to null.
func rejectNulls(raw []byte, fields []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrValidation, err)
	}
	for _, f := range fields {
		if v, ok := obj[f]; ok && string(bytes.TrimSpace(v)) == "null" {
			return domain.NewFieldError(f, "this field may not be null")
		}
	}
	return nil
}

// check runs struct validation on v and converts the first failure into a
// *domain.FieldError.
func (s *Server) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewFieldError(fe.Field(), "this field is required")
	case "max":
		return domain.NewFieldError(fe.Field(), fmt.Sprintf("ensure this field has no more than %s characters", fe.Param()))
	default:
		return domain.NewFieldError(fe.Field(), "invalid value")
	}
}
