package mysql

import (
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"mortgage-backend/internal/domain/errs"
)

// MySQL server error numbers surfaced as Conflict.
const (
	erDupEntry        = 1062
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// translate maps storage errors onto the engine's kinds. Anything it does not
// recognise is returned untouched.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.Wrap(err, errs.NotFound, msg+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Wrap(err, errs.Conflict, msg+" already exists")
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erDupEntry:
			return errs.Wrap(err, errs.Conflict, msg+" already exists")
		case erLockDeadlock, erLockWaitTimeout:
			return errs.Wrap(err, errs.Conflict, msg+" is locked by a concurrent transaction")
		}
	}
	return err
}
