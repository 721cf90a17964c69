package database

import (
	"database/sql"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this package. It is the
// stock sqlite3 driver plus the scalar functions added with RegisterFunction.
const DriverName = "sqlite3_cure"

// ScalarFunc is a deterministic SQL function of one argument. The argument is
// nil for SQL NULL, otherwise string, int64, float64 or []byte.
type ScalarFunc func(value any) (string, error)

var (
	functionsMu sync.RWMutex
	functions   = make(map[string]ScalarFunc)
	driverOnce  sync.Once
)

// RegisterFunction makes fn callable from SQL as name(x) on every connection
// opened after the call. Registering a name again replaces the function.
func RegisterFunction(name string, fn ScalarFunc) {
	functionsMu.Lock()
	defer functionsMu.Unlock()
	functions[name] = fn
}

// RegisteredFunctions lists the registered function names in sorted order.
func RegisteredFunctions() []string {
	functionsMu.RLock()
	defer functionsMu.RUnlock()
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFunction(name string) ScalarFunc {
	functionsMu.RLock()
	defer functionsMu.RUnlock()
	return functions[name]
}

func registerDriver() {
	driverOnce.Do(func() {
		sql.Register(DriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				for _, name := range RegisteredFunctions() {
					name := name
					// resolve on every call so a later RegisterFunction is honoured
					impl := func(value any) (string, error) {
						fn := lookupFunction(name)
						if fn == nil {
							return "", nil
						}
						return fn(value)
					}
					if err := conn.RegisterFunc(name, impl, true); err != nil {
						return err
					}
				}
				return nil
			},
		})
		sqlx.BindDriver(DriverName, sqlx.QUESTION)
	})
}
