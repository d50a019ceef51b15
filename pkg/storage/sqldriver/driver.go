// Package sqldriver provides storage operations over an ent SQL driver. It is
// database-agnostic and is embedded by the sqlite and postgres drivers, which
// only differ in how they open the connection.
//
// Each user record is stored as one JSON document:
//
//	user_records(user_id PRIMARY KEY, created_at, updated_at, record)
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/creatormem/pkg/record"
	"github.com/papercomputeco/creatormem/pkg/storage"
)

// SQLDriver implements storage.Driver on an ent SQL driver.
type SQLDriver struct {
	Conn *entsql.Driver
}

// New wraps conn and runs the schema migration.
func New(ctx context.Context, conn *entsql.Driver) (*SQLDriver, error) {
	if err := Migrate(ctx, conn); err != nil {
		return nil, err
	}
	return &SQLDriver{Conn: conn}, nil
}

// Get retrieves the record for userID.
func (d *SQLDriver) Get(ctx context.Context, userID string) (*record.UserRecord, error) {
	query, args := selectRecord(d.builder(), userID)

	rows := &entsql.Rows{}
	if err := d.Conn.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query record: %w", err)
		}
		return nil, storage.NotFoundError{UserID: userID}
	}

	var doc string
	if err := rows.Scan(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	rec := &record.UserRecord{}
	if err := json.Unmarshal([]byte(doc), rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", userID, err)
	}
	return rec, nil
}

// Put upserts rec.
func (d *SQLDriver) Put(ctx context.Context, rec *record.UserRecord) error {
	if rec == nil {
		return errors.New("cannot store nil record")
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	query, args := upsertRecord(d.builder(), rec, string(doc))
	if err := d.Conn.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts rec unless a record for its user ID exists, then
// reads back the stored record.
// Uses ON CONFLICT DO NOTHING so concurrent creators converge on one row.
func (d *SQLDriver) CreateIfAbsent(ctx context.Context, rec *record.UserRecord) (*record.UserRecord, bool, error) {
	if rec == nil {
		return nil, false, errors.New("cannot store nil record")
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode record: %w", err)
	}

	query, args := insertRecord(d.builder(), rec, string(doc))
	var res sql.Result
	if err := d.Conn.Exec(ctx, query, args, &res); err != nil {
		return nil, false, fmt.Errorf("failed to create record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	stored, err := d.Get(ctx, rec.UserID)
	if err != nil {
		return nil, false, err
	}
	return stored, affected > 0, nil
}

// List returns all stored user IDs in ascending order.
func (d *SQLDriver) List(ctx context.Context) ([]string, error) {
	query, args := listUsers(d.builder())

	rows := &entsql.Rows{}
	if err := d.Conn.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return ids, nil
}

// Close closes the underlying database.
func (d *SQLDriver) Close() error {
	return d.Conn.Close()
}

func (d *SQLDriver) builder() *entsql.DialectBuilder {
	return entsql.Dialect(d.Conn.Dialect())
}

func selectRecord(b *entsql.DialectBuilder, userID string) (string, []any) {
	return b.Select(ColumnRecord).
		From(b.Table(Table)).
		Where(entsql.EQ(ColumnUserID, userID)).
		Query()
}

func listUsers(b *entsql.DialectBuilder) (string, []any) {
	return b.Select(ColumnUserID).
		From(b.Table(Table)).
		OrderBy(ColumnUserID).
		Query()
}

func insertRecord(b *entsql.DialectBuilder, rec *record.UserRecord, doc string) (string, []any) {
	return recordInsert(b, rec, doc).
		OnConflict(
			entsql.ConflictColumns(ColumnUserID),
			entsql.DoNothing(),
		).
		Query()
}

func upsertRecord(b *entsql.DialectBuilder, rec *record.UserRecord, doc string) (string, []any) {
	return recordInsert(b, rec, doc).
		OnConflict(
			entsql.ConflictColumns(ColumnUserID),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded(ColumnUpdatedAt)
				u.SetExcluded(ColumnRecord)
			}),
		).
		Query()
}

func recordInsert(b *entsql.DialectBuilder, rec *record.UserRecord, doc string) *entsql.InsertBuilder {
	return b.Insert(Table).
		Columns(ColumnUserID, ColumnCreatedAt, ColumnUpdatedAt, ColumnRecord).
		Values(rec.UserID, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(), doc)
}
