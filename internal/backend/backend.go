// Package backend selects and constructs the persistence store from
// configuration.
package backend

import (
	"nexo/internal/core"
	"nexo/internal/services"
)

// BackendType represents the type of persistence backend
type BackendType string

const (
	SnapshotBackend BackendType = "snapshot"
	SQLiteBackend   BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SnapshotBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// State is the persisted state loaded at startup.
type State struct {
	Transactions []core.Transaction
	Accounts     []core.Account
	Profile      *core.Profile
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the constructed store, the state it loaded, and an
// optional cleanup function.
type Result struct {
	Store   services.Store
	State   State
	Cleanup CleanupFunc
}
