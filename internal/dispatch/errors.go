package dispatch

import (
	"errors"

	"github.com/mateconpizza/pm/pkg/db"
)

// Error kinds reported on the call surface.
const (
	KindNotFound           = "not_found"
	KindConflict           = "conflict"
	KindForbidden          = "forbidden"
	KindStorageUnavailable = "storage_unavailable"
	KindInvalid            = "invalid"
	KindUnknownOp          = "unknown_op"
	KindInternal           = "internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{db.ErrNotFound, KindNotFound},
	{db.ErrConflict, KindConflict},
	{db.ErrForbidden, KindForbidden},
	{db.ErrStorageUnavailable, KindStorageUnavailable},
	{db.ErrInvalid, KindInvalid},
	{ErrUnknownOp, KindUnknownOp},
}

// KindOf classifies err. Errors outside the known kinds are internal.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindInternal
}

// Error is the failure half of a response.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

// NewError converts err into a response error.
func NewError(err error) *Error {
	return &Error{Kind: KindOf(err), Message: err.Error()}
}
