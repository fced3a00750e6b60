// Package store persists the program catalog, applicant organizations,
// and generated ideal-applicant profiles in SQLite. Records are stored
// as JSON documents alongside a few indexed columns, so schema churn on
// the optional fields never needs a migration.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"grantmatch/internal/catalog"
)

// ErrNotFound is returned when an id resolves to nothing. Callers
// surface it; the matching engine never handles it internally.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	org_type   TEXT NOT NULL DEFAULT '',
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS programs (
	id         TEXT PRIMARY KEY,
	agency_id  TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT 'RD',
	status     TEXT NOT NULL DEFAULT 'ACTIVE',
	deadline   TEXT NOT NULL DEFAULT '',
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ideal_profiles (
	program_id   TEXT PRIMARY KEY,
	doc          TEXT NOT NULL,
	version      TEXT NOT NULL,
	generated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_programs_source ON programs (source, status);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// SaveOrganization upserts the full organization document.
func (s *Store) SaveOrganization(ctx context.Context, org *catalog.Organization) error {
	doc, err := json.Marshal(org)
	if err != nil {
		return fmt.Errorf("encode organization: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO organizations (id, name, org_type, doc, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		org.ID, org.Name, string(org.Type), string(doc), timeToString(time.Now()))
	if err != nil {
		return fmt.Errorf("save organization %s: %w", org.ID, err)
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*catalog.Organization, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM organizations WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("organization %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load organization %s: %w", id, err)
	}
	var org catalog.Organization
	if err := json.Unmarshal([]byte(doc), &org); err != nil {
		return nil, fmt.Errorf("decode organization %s: %w", id, err)
	}
	return &org, nil
}

// SaveProgram upserts the full program document. The ideal-profile
// columns live in their own table; the document's embedded copy is
// whatever the caller had at save time.
func (s *Store) SaveProgram(ctx context.Context, p *catalog.Program) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	var deadline string
	if p.Deadline != nil {
		deadline = timeToString(*p.Deadline)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO programs (id, agency_id, source, status, deadline, doc, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AgencyID, string(p.Source), string(p.Status), deadline, string(doc), timeToString(time.Now()))
	if err != nil {
		return fmt.Errorf("save program %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetProgram(ctx context.Context, id string) (*catalog.Program, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM programs WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("program %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load program %s: %w", id, err)
	}
	p, err := s.decodeProgram(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("decode program %s: %w", id, err)
	}
	return p, nil
}

// ListPrograms returns every program of the given source, or all
// programs when source is empty. Persisted ideal profiles are overlaid
// onto the returned records.
func (s *Store) ListPrograms(ctx context.Context, source catalog.ProgramSource) ([]*catalog.Program, error) {
	query := "SELECT doc FROM programs"
	var args []any
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, string(source))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Program
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := s.decodeProgram(ctx, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) decodeProgram(ctx context.Context, doc string) (*catalog.Program, error) {
	var p catalog.Program
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, err
	}

	var profDoc, version, generatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc, version, generated_at FROM ideal_profiles WHERE program_id = ?", p.ID).
		Scan(&profDoc, &version, &generatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &p, nil
	}
	if err != nil {
		return nil, err
	}
	p.IdealProfile = json.RawMessage(profDoc)
	p.IdealProfileVersion = version
	if t, perr := time.Parse(time.RFC3339Nano, generatedAt); perr == nil {
		p.IdealProfileGeneratedAt = &t
	}
	return &p, nil
}

// SaveProfile persists a generated ideal-applicant profile. It satisfies
// the batch generator's store interface.
func (s *Store) SaveProfile(ctx context.Context, programID string, doc json.RawMessage, version string, generatedAt time.Time) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM programs WHERE id = ?", programID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check program %s: %w", programID, err)
	}
	if exists == 0 {
		return fmt.Errorf("program %s: %w", programID, ErrNotFound)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO ideal_profiles (program_id, doc, version, generated_at)
		VALUES (?, ?, ?, ?)`,
		programID, string(doc), version, timeToString(generatedAt))
	if err != nil {
		return fmt.Errorf("save profile %s: %w", programID, err)
	}
	return nil
}
