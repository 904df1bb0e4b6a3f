package project

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"timecard/internal/timelog"
	"timecard/internal/timer"

	_ "modernc.org/sqlite"
)

const (
	currentProjectKey = "current_project"

	// Fixed width UTC timestamps sort correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Repository is the SQLite backed store.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	projectsQuery := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		total_seconds INTEGER NOT NULL DEFAULT 0,
		checkout_at TEXT
	)
	`
	if _, err := r.db.Exec(projectsQuery); err != nil {
		return err
	}

	// Records keep the project name rather than a foreign key so that
	// deleting a project leaves its history intact.
	recordsQuery := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL,
		checkout_at TEXT NOT NULL,
		checkin_at TEXT NOT NULL,
		hours INTEGER NOT NULL,
		minutes INTEGER NOT NULL,
		seconds INTEGER NOT NULL
	)
	`
	if _, err := r.db.Exec(recordsQuery); err != nil {
		return err
	}

	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)
	`
	_, err := r.db.Exec(settingsQuery)
	return err
}

func (r *Repository) CurrentProject() (string, error) {
	var name string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", currentProjectKey).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// SetCurrentProject stores the current project pointer. An empty name clears it.
func (r *Repository) SetCurrentProject(name string) error {
	if name == "" {
		_, err := r.db.Exec("DELETE FROM settings WHERE key = ?", currentProjectKey)
		return err
	}
	_, err := r.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		currentProjectKey, name,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var total int64
	var checkout sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &total, &checkout); err != nil {
		return nil, err
	}
	p.Total = time.Duration(total) * time.Second
	if checkout.Valid {
		t, err := time.Parse(timeLayout, checkout.String)
		if err != nil {
			return nil, fmt.Errorf("project %s: bad checkout timestamp: %w", p.Name, err)
		}
		p.CheckoutAt = &t
	}
	return &p, nil
}

func (r *Repository) ListProjects() ([]Project, error) {
	rows, err := r.db.Query("SELECT id, name, total_seconds, checkout_at FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *Repository) GetProject(name string) (*Project, error) {
	row := r.db.QueryRow("SELECT id, name, total_seconds, checkout_at FROM projects WHERE name = ?", name)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, err
}

func (r *Repository) CreateProject(p *Project) error {
	result, err := r.db.Exec(
		"INSERT INTO projects (name, total_seconds, checkout_at) VALUES (?, ?, ?)",
		p.Name, int64(p.Total/time.Second), formatCheckout(p.CheckoutAt),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *Repository) UpdateProject(p *Project) error {
	result, err := r.db.Exec(
		"UPDATE projects SET total_seconds = ?, checkout_at = ? WHERE name = ?",
		int64(p.Total/time.Second), formatCheckout(p.CheckoutAt), p.Name,
	)
	if err != nil {
		return err
	}
	return requireRow(result, p.Name)
}

func (r *Repository) DeleteProject(name string) error {
	result, err := r.db.Exec("DELETE FROM projects WHERE name = ?", name)
	if err != nil {
		return err
	}
	return requireRow(result, name)
}

func (r *Repository) AppendRecord(rec *timelog.Record) error {
	result, err := r.db.Exec(
		"INSERT INTO records (project, checkout_at, checkin_at, hours, minutes, seconds) VALUES (?, ?, ?, ?, ?, ?)",
		rec.Project,
		rec.CheckoutAt.UTC().Format(timeLayout),
		rec.CheckinAt.UTC().Format(timeLayout),
		rec.Breakdown.Hours,
		rec.Breakdown.Minutes,
		rec.Breakdown.Seconds,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// ListRecords returns records newest first. An empty project name returns
// records of every project.
func (r *Repository) ListRecords(projectName string) ([]timelog.Record, error) {
	query := "SELECT id, project, checkout_at, checkin_at, hours, minutes, seconds FROM records"
	var args []any
	if projectName != "" {
		query += " WHERE project = ?"
		args = append(args, projectName)
	}
	query += " ORDER BY checkin_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []timelog.Record
	for rows.Next() {
		var rec timelog.Record
		var checkoutAt, checkinAt string
		var b timer.Breakdown
		if err := rows.Scan(&rec.ID, &rec.Project, &checkoutAt, &checkinAt, &b.Hours, &b.Minutes, &b.Seconds); err != nil {
			return nil, err
		}
		if rec.CheckoutAt, err = time.Parse(timeLayout, checkoutAt); err != nil {
			return nil, fmt.Errorf("record %d: bad checkout timestamp: %w", rec.ID, err)
		}
		if rec.CheckinAt, err = time.Parse(timeLayout, checkinAt); err != nil {
			return nil, fmt.Errorf("record %d: bad checkin timestamp: %w", rec.ID, err)
		}
		rec.Breakdown = b
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func formatCheckout(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func requireRow(result sql.Result, name string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
