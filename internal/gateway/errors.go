// AngelaMos | 2026
// errors.go

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

type Category string

const (
	CategoryValidation Category = "validation"
	CategoryAuth       Category = "auth"
	CategoryNotFound   Category = "notFound"
	CategoryServer     Category = "server"
	CategoryNetwork    Category = "network"
)

// RemoteError is every failure the gateway reports after dispatch. Message
// is the server's own text; Status is 0 for transport failures.
type RemoteError struct {
	Op       string
	Category Category
	Status   int
	Code     string
	Message  string
	Err      error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Category, e.Message)
	}
	return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Category, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// CategoryFor maps a transport status code onto an error category.
func CategoryFor(status int) Category {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return CategoryAuth
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status >= 500:
		return CategoryServer
	case status >= 400:
		return CategoryValidation
	case status == 0:
		return CategoryNetwork
	default:
		return CategoryValidation
	}
}

// AsRemote extracts a *RemoteError from an error chain.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsCategory reports whether err is a RemoteError of the given category.
func IsCategory(err error, c Category) bool {
	re, ok := AsRemote(err)
	return ok && re.Category == c
}
