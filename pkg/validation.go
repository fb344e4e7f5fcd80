package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BadRequestError carries a message that is safe to send back to the client.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

func NewBadRequestError(format string, args ...any) *BadRequestError {
	return &BadRequestError{Message: fmt.Sprintf(format, args...)}
}

// DecodeAndValidate reads a JSON body into dst and runs the struct's
// `validate` tags. Every returned error is a *BadRequestError.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return ValidateStruct(dst)
}

// DecodeJSON reads a JSON body into dst without validating it.
func DecodeJSON(r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != ContentType.JSON {
			return NewBadRequestError("invalid content type")
		}
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return NewBadRequestError("request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return NewBadRequestError("%s must be a %s", typeErr.Field, typeErr.Type.String())
		}
		return NewBadRequestError("invalid json body")
	}
	return nil
}

// ValidateStruct runs validator tags and flattens the first failure into a message.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return NewBadRequestError("invalid request")
	}

	fe := validationErrors[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return NewBadRequestError("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return NewBadRequestError("%s must be at least %s characters", field, fe.Param())
		}
		return NewBadRequestError("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return NewBadRequestError("%s must not exceed %s characters", field, fe.Param())
		}
		return NewBadRequestError("%s must not exceed %s", field, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return NewBadRequestError("%s must be a non-negative number", field)
		}
		return NewBadRequestError("%s must be at least %s", field, fe.Param())
	case "uuid", "uuid4":
		return NewBadRequestError("%s must be a valid id", field)
	case "oneof":
		return NewBadRequestError("%s must be one of: %s", field, fe.Param())
	default:
		return NewBadRequestError("%s is invalid", field)
	}
}

// WriteBadRequest answers 400 with the client-safe message carried by err.
func WriteBadRequest(w http.ResponseWriter, err error) {
	var badReq *BadRequestError
	if errors.As(err, &badReq) {
		WriteJSONError(w, badReq.Message, http.StatusBadRequest)
		return
	}
	WriteJSONError(w, "invalid request", http.StatusBadRequest)
}
