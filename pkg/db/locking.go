package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithRowLock applies SELECT ... FOR UPDATE on dialects that support it.
// SQLite serializes writers at the database level, so the clause is skipped
// there rather than producing a syntax error.
func WithRowLock(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	default:
		return tx
	}
}
