package mysql

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	// mysqlDatabaseAccessDeniedErrorNumber is ER_DBACCESS_DENIED_ERROR.
	mysqlDatabaseAccessDeniedErrorNumber = 1044

	// mysqlTableAccessDeniedErrorNumber is ER_TABLEACCESS_DENIED_ERROR.
	mysqlTableAccessDeniedErrorNumber = 1142

	// mysqlMissingTableErrorNumber is ER_NO_SUCH_TABLE, SQLSTATE 42S02.
	mysqlMissingTableErrorNumber = 1146
)

// IsMissingTableError returns true if the error is a MySQL error indicating a
// missing table.
func IsMissingTableError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlMissingTableErrorNumber
}

// IsAccessDeniedError returns true if the error is a MySQL error indicating
// the user may not read a database or table.
func IsAccessDeniedError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == mysqlDatabaseAccessDeniedErrorNumber || mysqlErr.Number == mysqlTableAccessDeniedErrorNumber
}

// wrapQueryError adds what was being done to err, naming the table if it is
// missing or not readable.
func wrapQueryError(err error, action, table string) error {
	switch {
	case IsMissingTableError(err):
		return fmt.Errorf("unable to %s: table `%s` does not exist: %w", action, table, err)
	case IsAccessDeniedError(err):
		return fmt.Errorf("unable to %s: access to `%s` denied: %w", action, table, err)
	default:
		return fmt.Errorf("unable to %s: %w", action, err)
	}
}
