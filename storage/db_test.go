package storage

import (
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"
	"time"
)

// userRowDriver serves one canned row for the session/user/role join, so the
// column order of GetUserBySessionID can be checked without a database.
type userRowDriver struct {
	row []driver.Value
}

var userRowColumns = []string{
	"id", "employee_id", "email", "first_name", "last_name",
	"created_at", "updated_at", "first_access", "last_access",
	"profile_picture", "is_admin", "address", "city",
	"state", "country", "zip_code", "phone_no",
	"role_id", "role_name", "suspended",
}

func (d *userRowDriver) Open(string) (driver.Conn, error) { return &userRowConn{d: d}, nil }

type userRowConn struct{ d *userRowDriver }

func (c *userRowConn) Prepare(query string) (driver.Stmt, error) {
	return &userRowStmt{d: c.d}, nil
}
func (c *userRowConn) Close() error              { return nil }
func (c *userRowConn) Begin() (driver.Tx, error) { return nil, driver.ErrSkip }

type userRowStmt struct{ d *userRowDriver }

func (s *userRowStmt) Close() error  { return nil }
func (s *userRowStmt) NumInput() int { return -1 }
func (s *userRowStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, driver.ErrSkip
}
func (s *userRowStmt) Query([]driver.Value) (driver.Rows, error) {
	return &userRowRows{d: s.d}, nil
}

type userRowRows struct {
	d    *userRowDriver
	done bool
}

func (r *userRowRows) Columns() []string { return userRowColumns }
func (r *userRowRows) Close() error      { return nil }
func (r *userRowRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	copy(dest, r.d.row)
	r.done = true
	return nil
}

func openUserRowDB(t *testing.T, name string, row []driver.Value) *sql.DB {
	t.Helper()
	if len(row) != len(userRowColumns) {
		t.Fatalf("stub row has %d values, want %d", len(row), len(userRowColumns))
	}
	sql.Register(name, &userRowDriver{row: row})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetUserBySessionIDScansRole(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	db := openUserRowDB(t, "userrow-admin", []driver.Value{
		int64(7), "EMP-007", "ops@fiberops.example", "Ana", "Reyes",
		now, now, now, nil,
		"", true, "12 Fiber Way", "Lisbon",
		"", "PT", "1000-001", "+351900000000",
		int64(3), "superadmin", false,
	})

	user, err := GetUserBySessionID(db, "session-abc")
	if err != nil {
		t.Fatalf("GetUserBySessionID failed: %v", err)
	}
	if user.RoleID != 3 {
		t.Errorf("RoleID = %d, want 3", user.RoleID)
	}
	if user.RoleName != "superadmin" {
		t.Errorf("RoleName = %q, want %q", user.RoleName, "superadmin")
	}
	if !user.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
	if user.ID != 7 || user.Email != "ops@fiberops.example" {
		t.Errorf("unexpected identity fields: id %d email %q", user.ID, user.Email)
	}
	if !user.FirstAccess.Equal(now) {
		t.Errorf("FirstAccess = %v, want %v", user.FirstAccess, now)
	}
	if !user.LastAccess.IsZero() {
		t.Errorf("LastAccess = %v, want zero for NULL", user.LastAccess)
	}
}

func TestGetUserBySessionIDRejectsSuspended(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	db := openUserRowDB(t, "userrow-suspended", []driver.Value{
		int64(8), "EMP-008", "tech@fiberops.example", "Rui", "Costa",
		now, now, nil, nil,
		"", false, "", "",
		"", "", "", "",
		int64(2), "technician", true,
	})

	if _, err := GetUserBySessionID(db, "session-def"); err == nil {
		t.Fatal("expected an error for a suspended account")
	}
}
