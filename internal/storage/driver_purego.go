//go:build purego

package storage

// Pure Go build: modernc.org/sqlite, no C compiler required.
//
//   CGO_ENABLED=0 go build -tags purego ./...

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver registered with bit_count
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)

func init() {
	err := sqlite.RegisterDeterministicScalarFunction("bit_count", 1,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case int64:
				return bitCount(v), nil
			case nil:
				return nil, nil
			default:
				return nil, fmt.Errorf("bit_count: unsupported argument %T", v)
			}
		})
	if err != nil {
		panic(fmt.Sprintf("register bit_count: %v", err))
	}
}
