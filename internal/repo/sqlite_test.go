package repo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/shaiso/todos/internal/domain"
)

// errRowsAffected — драйвер не смог сообщить число изменённых строк.
var errRowsAffected = errors.New("rows affected unavailable")

// noCountDriver — database/sql драйвер, у которого Exec успешен,
// а RowsAffected всегда возвращает ошибку.
type noCountDriver struct{}

func (noCountDriver) Open(string) (driver.Conn, error) { return noCountConn{}, nil }

type noCountConn struct{}

func (noCountConn) Prepare(string) (driver.Stmt, error) { return noCountStmt{}, nil }
func (noCountConn) Close() error                        { return nil }
func (noCountConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

type noCountStmt struct{}

func (noCountStmt) Close() error                               { return nil }
func (noCountStmt) NumInput() int                              { return -1 }
func (noCountStmt) Exec([]driver.Value) (driver.Result, error) { return noCountResult{}, nil }
func (noCountStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("not supported")
}

type noCountResult struct{}

func (noCountResult) LastInsertId() (int64, error) { return 0, nil }
func (noCountResult) RowsAffected() (int64, error) { return 0, errRowsAffected }

func init() {
	sql.Register("sqlite-nocount", noCountDriver{})
}

func TestSQLiteRepo_RowsAffectedError(t *testing.T) {
	db, err := sql.Open("sqlite-nocount", "")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	r := &SQLiteRepo{db: db}
	ctx := context.Background()

	_, err = r.Update(ctx, 1, domain.Todo{Title: "x"})
	if !errors.Is(err, errRowsAffected) {
		t.Errorf("Update: expected rows affected error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("Update: driver failure must not look like ErrNotFound")
	}

	err = r.DeleteByID(ctx, 1)
	if !errors.Is(err, errRowsAffected) {
		t.Errorf("DeleteByID: expected rows affected error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("DeleteByID: driver failure must not look like ErrNotFound")
	}
}
