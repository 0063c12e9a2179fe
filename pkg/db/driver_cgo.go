//go:build cgo

package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

func init() {
	uniqueViolations = append(uniqueViolations, func(err error) bool {
		var se sqlite3.Error
		return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
	})
}
