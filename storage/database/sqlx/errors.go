package sqlxrepos

import (
	"database/sql"
	"database/sql/driver"

	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core"
)

// wrapDBErr wraps repository errors uniformly. A dead connection is promoted
// to a shutdown error so the server stops instead of failing every request.
func wrapDBErr(err error, msg string) error {
	switch errors.Cause(err) {
	case driver.ErrBadConn, sql.ErrConnDone:
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}
