package rls

import (
	"fmt"

	"gorm.io/gorm"
)

// WithClient pins the current transaction to a single client for databases
// with row-level-security policies keyed on app.current_client_id. Must be
// called inside a transaction; SET LOCAL is scoped to it. Dialects without
// the policy support (sqlite in tests, mysql) are a no-op; application
// scoping still applies there.
func WithClient(tx *gorm.DB, clientID int64) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(
		"SET LOCAL app.current_client_id = ?",
		fmt.Sprintf("%d", clientID),
	).Error
}
