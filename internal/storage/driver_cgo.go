//go:build !purego

package storage

// Default build: github.com/mattn/go-sqlite3 (requires CGO).
//
//   CGO_ENABLED=1 go build ./...

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver registered with bit_count
	DriverName = "sqlite3_chessmatch"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("bit_count", bitCount, true)
		},
	})
}
