package repository

import "golang.org/x/xerrors"

// Store drivers selectable through configuration.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Open returns the Store for driver. dsn is only used by the sqlite driver.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := NewSQLiteStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, xerrors.Errorf("unknown store driver %q", driver)
	}
}
