package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/rotamanager/internal/dbx"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/members"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/membershifts"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/schedules"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/shifts"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/teams"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/users"
	"github.com/dmitrijs2005/rotamanager/internal/server/repositories/verificationtokens"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	VerificationTokens(db dbx.DBTX) verificationtokens.Repository
	Teams(db dbx.DBTX) teams.Repository
	Members(db dbx.DBTX) members.Repository
	Schedules(db dbx.DBTX) schedules.Repository
	Shifts(db dbx.DBTX) shifts.Repository
	MemberShifts(db dbx.DBTX) membershifts.Repository
}
