//go:build !sqlite

package storage

import "fmt"

const defaultStoreKind = "memory"

func newSQLiteStore(_ string, _ Compression) (Store, error) {
	return nil, fmt.Errorf("sqlite backend unavailable in this build; rebuild with -tags sqlite")
}
