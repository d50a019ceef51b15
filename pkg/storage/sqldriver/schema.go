package sqldriver

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table is the name of the user record table.
const Table = "user_records"

// Columns of the user record table.
const (
	ColumnUserID    = "user_id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
	ColumnRecord    = "record"
)

var (
	// UserRecordsColumns holds the columns for the "user_records" table.
	UserRecordsColumns = []*schema.Column{
		{Name: ColumnUserID, Type: field.TypeString, Size: 2147483647},
		{Name: ColumnCreatedAt, Type: field.TypeTime},
		{Name: ColumnUpdatedAt, Type: field.TypeTime},
		// record is the whole user record as one JSON document
		{Name: ColumnRecord, Type: field.TypeString, Size: 2147483647},
	}

	// UserRecordsTable holds the schema information for the "user_records" table.
	UserRecordsTable = &schema.Table{
		Name:       Table,
		Columns:    UserRecordsColumns,
		PrimaryKey: []*schema.Column{UserRecordsColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UserRecordsTable,
	}
)

// Migrate creates or updates the schema. Changes are append-only: new tables
// and columns are added, nothing is dropped.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("failed to prepare migration: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
