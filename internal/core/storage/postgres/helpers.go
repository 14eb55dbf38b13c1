package postgres

import (
	"database/sql"
	"fmt"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
)

// nullableInt maps an optional int to SQL NULL instead of zero.
func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventbaseRow scans a catalog row into its wire record.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEventbaseRow(row scanner) (*v1.EventRecord, error) {
	var rec v1.EventRecord
	var dateYear sql.NullInt64
	var actor sql.NullString

	if err := row.Scan(
		&rec.UID,
		&dateYear,
		&rec.DateMonth,
		&rec.DateDay,
		&rec.Title,
		&actor,
	); err != nil {
		return nil, fmt.Errorf("failed to scan eventbase row: %w", err)
	}

	if dateYear.Valid {
		year := int(dateYear.Int64)
		rec.DateYear = &year
	}
	rec.Actor = actor.String

	return &rec, nil
}

// scanMilestoneRow scans a milestone row into its wire record.
func scanMilestoneRow(row scanner) (*v1.MilestoneRecord, error) {
	var rec v1.MilestoneRecord
	var reminderAt sql.NullTime
	var story sql.NullString

	if err := row.Scan(
		&rec.DateYear,
		&rec.EventbaseUID,
		&rec.State.Type,
		&reminderAt,
		&story,
	); err != nil {
		return nil, fmt.Errorf("failed to scan milestone row: %w", err)
	}

	if reminderAt.Valid {
		at := reminderAt.Time.UTC()
		rec.State.NextReminderDatetime = &at
	}
	rec.Story = story.String

	return &rec, nil
}
