// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. Every statement is idempotent so it
// runs on each startup.
func (d *Database) Migrate(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
