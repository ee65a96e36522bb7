// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
)

const defaultMaxBodyBytes = 4 << 20

var maxBody atomic.Int64

// SetMaxBodyBytes changes the body limit applied by JSON. n <= 0 restores 4 MB.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = defaultMaxBodyBytes
	}
	maxBody.Store(n)
}

func maxBodyBytes() int64 {
	if n := maxBody.Load(); n > 0 {
		return n
	}
	return defaultMaxBodyBytes
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// JSON decodes r.Body as JSON into dest and runs validation.
// Returns (errs, nil) when there are validation failures and
// (nil, err) when the body is malformed JSON or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	if err = Decode(r, dest); err != nil {
		return nil, err
	}
	return Struct(dest), nil
}

// Decode reads r.Body as JSON into dest under the body limit, without
// validation. Use it for free-form documents such as map targets.
func Decode(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// Struct validates v against its `validate` tags. A nil map means valid.
func Struct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// Summary flattens errs into a single deterministic message.
func Summary(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		parts = append(parts, errs[field])
	}
	return strings.Join(parts, "; ")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
