// Package directory manages the signed-in user's clients and projects.
//
// Every mutating call reports its outcome through the toast provider carried
// in the context: a success toast on completion, an error toast on failure.
// Failures are also returned to the caller.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/bizdesk/internal/auth"
	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

// Directory errors.
var (
	ErrDuplicateName = errors.New("name already exists")
	ErrNotFound      = errors.New("not found")
	ErrUnknownClient = errors.New("client does not exist")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Identity supplies the owner for directory operations.
type Identity interface {
	RequireUser() (*model.User, error)
}

var _ Identity = (*auth.Service)(nil)

var validate = validator.New()

// validateStruct runs struct tags and converts failures into a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// Message turns a directory error into text suitable for a toast.
func Message(err error, kind string) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "Please check the form: " + strings.TrimPrefix(verr.Error(), "invalid input: ")
	case errors.Is(err, ErrDuplicateName):
		return fmt.Sprintf("A %s with this name already exists.", kind)
	case errors.Is(err, ErrNotFound):
		return fmt.Sprintf("That %s no longer exists.", kind)
	case errors.Is(err, ErrUnknownClient):
		return "The selected client does not exist."
	case errors.Is(err, auth.ErrNotSignedIn):
		return auth.Message(err)
	default:
		return fmt.Sprintf("Could not save %s. Please try again.", kind)
	}
}

// fail enqueues an error toast for err and returns it.
func fail(ctx context.Context, err error, kind string) error {
	return toast.Fail(ctx, err, Message(err, kind))
}

// notFound maps store misses onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

func trimTags(tags []string) []string {
	return model.MergeTags(nil, tags)
}
