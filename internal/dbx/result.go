package dbx

import (
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/rotamanager/internal/common"
)

// RequireAffected turns a statement that touched no rows into
// common.ErrorNotFound.
func RequireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
