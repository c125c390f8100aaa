package membershifts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQ   = `(?s)^\s*INSERT\s+INTO\s+members_shifts\s*\(member_id,\s*shift_id,\s*start_time,\s*end_time\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3::time,\s*\$4::time\)\s*RETURNING\s+id\s*$`
	getQ      = `(?s)^\s*SELECT\s+id,\s*member_id,\s*shift_id,.*FROM\s+members_shifts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+shift_id\s*=\s*\$2\s*$`
	deleteQ   = `(?s)^\s*DELETE\s+FROM\s+members_shifts\s+WHERE\s+id\s*=\s*\$1\s*$`
	bySchedQ  = `(?s)^\s*SELECT\s+ms\.id,.*FROM\s+members_shifts\s+ms\s+JOIN\s+shifts\s+sh.*WHERE\s+sh\.schedule_id\s*=\s*\$1.*$`
	byShiftQ  = `(?s)^\s*SELECT\s+id,\s*member_id,\s*shift_id,.*FROM\s+members_shifts\s+WHERE\s+shift_id\s*=\s*\$1\s+ORDER\s+BY.*$`
	byMemberQ = `(?s)^\s*SELECT\s+ms\.id,.*FROM\s+members_shifts\s+ms\s+JOIN\s+shifts\s+sh.*WHERE\s+ms\.member_id\s*=\s*\$1.*$`
)

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WithArgs("m-1", "sh-1", "09:00", "13:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ms-1"))

	got, err := repo.Create(context.Background(), &models.MemberShift{MemberID: "m-1", ShiftID: "sh-1", StartTime: 9 * time.Hour, EndTime: 13 * time.Hour})
	require.NoError(t, err)
	assert.Equal(t, "ms-1", got.ID)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WithArgs("m-1", "sh-1", "09:00", "13:00").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "members_shifts_member_id_shift_id_key"})

	_, err := repo.Create(context.Background(), &models.MemberShift{MemberID: "m-1", ShiftID: "sh-1", StartTime: 9 * time.Hour, EndTime: 13 * time.Hour})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCreate_ShiftDeletedConcurrently(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &models.MemberShift{MemberID: "m-1", ShiftID: "sh-1", StartTime: 9 * time.Hour, EndTime: 13 * time.Hour})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByIDAndShift(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQ).WithArgs("ms-1", "sh-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "shift_id", "start_time", "end_time"}).AddRow("ms-1", "m-1", "sh-1", "10:15", "12:00"))

	got, err := repo.GetByIDAndShift(context.Background(), "ms-1", "sh-1")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+15*time.Minute, got.StartTime)

	mock.ExpectQuery(getQ).WithArgs("ms-1", "sh-2").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByIDAndShift(context.Background(), "ms-1", "sh-2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQ).WithArgs("ms-1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "ms-1"))

	mock.ExpectExec(deleteQ).WithArgs("ms-1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "ms-1"), common.ErrorNotFound)
}

func TestListBySchedule(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "member_id", "shift_id", "start_time", "end_time"}).
		AddRow("ms-1", "m-1", "sh-1", "09:00", "17:00").
		AddRow("ms-2", "m-2", "sh-1", "12:00", "17:00")
	mock.ExpectQuery(bySchedQ).WithArgs("s-1").WillReturnRows(rows)

	got, err := repo.ListBySchedule(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m-2", got[1].MemberID)
	assert.Equal(t, 12*time.Hour, got[1].StartTime)
}

func TestListByMember(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	day := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "member_id", "shift_id", "start_time", "end_time", "schedule_id", "name", "date", "shift_start", "shift_end"}).
		AddRow("ms-1", "m-1", "sh-1", "09:00", "17:00", "s-1", "Morning", day, "09:00", "17:00")
	mock.ExpectQuery(byMemberQ).WithArgs("m-1").WillReturnRows(rows)

	got, err := repo.ListByMember(context.Background(), "m-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sh-1", got[0].Shift.ID)
	assert.Equal(t, "Morning", got[0].Shift.Name)
	assert.Equal(t, 17*time.Hour, got[0].EndTime)
	assert.True(t, got[0].Shift.Date.Equal(day))
}

func TestListByMember_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(byMemberQ).WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "shift_id", "start_time", "end_time", "schedule_id", "name", "date", "shift_start", "shift_end"}))

	got, err := repo.ListByMember(context.Background(), "m-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListByShift(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "member_id", "shift_id", "start_time", "end_time"}).
		AddRow("ms-1", "m-1", "sh-1", "09:00", "17:00")
	mock.ExpectQuery(byShiftQ).WithArgs("sh-1").WillReturnRows(rows)

	got, err := repo.ListByShift(context.Background(), "sh-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 17*time.Hour, got[0].EndTime)
	require.NoError(t, mock.ExpectationsWereMet())
}
