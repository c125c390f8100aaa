// Package services contains the rota business logic: identity and
// verification, the team authorization guard, team membership, shift
// scheduling and schedule export. Every operation takes the caller's user
// id explicitly and reports failures with the sentinel errors of package
// common.
package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/google/uuid"
)

// withTx is a seam over dbx.WithTx.
var withTx = dbx.WithTx

// maxNameLength bounds team, shift and user names.
const maxNameLength = 50

// requireID rejects ids that cannot exist in the store, so a malformed path
// segment reads as an absent entity rather than a driver error.
func requireID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, kind)
	}
	return nil
}

// cleanName trims name and checks it is between minLen and maxNameLength
// characters.
func cleanName(field, name string, minLen int) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return "", fmt.Errorf("%w: %s must not be blank", common.ErrValidation, field)
	}
	if n < minLen || n > maxNameLength {
		return "", fmt.Errorf("%w: %s must be %d to %d characters", common.ErrValidation, field, minLen, maxNameLength)
	}
	return name, nil
}

// checkWindow validates a time-of-day window.
func checkWindow(start, end time.Duration) error {
	if start < 0 || end < 0 || start >= 24*time.Hour || end >= 24*time.Hour {
		return fmt.Errorf("%w: times must be within one day", common.ErrValidation)
	}
	if end <= start {
		return fmt.Errorf("%w: end time must be after start time", common.ErrValidation)
	}
	return nil
}
