package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"annonces-abidjan/models"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func (d dialect) String() string {
	if d == dialectSQLite {
		return "sqlite"
	}
	return "postgres"
}

// SQLStore persists listings in PostgreSQL or SQLite through database/sql.
// Queries are written with '?' placeholders and rebound per dialect.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return newSQLStore(db, dialectPostgres)
}

// NewSQLiteStore opens (or creates) the SQLite database file at path.
// Intermediate directories are created automatically.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return newSQLStore(db, dialectSQLite)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", d, err)
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	retrievedType := "TIMESTAMPTZ"
	if s.dialect == dialectSQLite {
		retrievedType = "TIMESTAMP"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS annonces (
			id                BIGINT PRIMARY KEY,
			titre             TEXT    NOT NULL DEFAULT '',
			description       TEXT    NOT NULL DEFAULT '',
			image             TEXT    NOT NULL DEFAULT '',
			prix              BIGINT  NOT NULL DEFAULT 0,
			type              TEXT    NOT NULL DEFAULT '',
			quartier          TEXT    NOT NULL DEFAULT '',
			surface           TEXT    NOT NULL DEFAULT '',
			chambres          INTEGER NOT NULL DEFAULT 0,
			date_publication  TEXT    NOT NULL DEFAULT '',
			date_recuperation ` + retrievedType + ` NOT NULL,
			source            TEXT    NOT NULL DEFAULT '',
			url               TEXT    UNIQUE,
			contact_nom       TEXT    NOT NULL DEFAULT '',
			contact_telephone TEXT    NOT NULL DEFAULT '',
			contact_email     TEXT    NOT NULL DEFAULT '',
			contact_whatsapp  TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_annonces_date     ON annonces(date_publication)`,
		`CREATE INDEX IF NOT EXISTS idx_annonces_quartier ON annonces(quartier)`,
		`CREATE INDEX IF NOT EXISTS idx_annonces_type     ON annonces(type)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites '?' placeholders into '$n' for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// containsExpr is a case-insensitive "column contains ?" predicate.
func (s *SQLStore) containsExpr(column string) string {
	if s.dialect == dialectSQLite {
		return "INSTR(LOWER(" + column + "), ?) > 0"
	}
	return "POSITION(? IN LOWER(" + column + ")) > 0"
}

// Save inserts listings in a single transaction. Ids or URLs already
// present are skipped.
func (s *SQLStore) Save(ctx context.Context, listings []*models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", s.dialect, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO annonces (
			id, titre, description, image, prix, type, quartier, surface, chambres,
			date_publication, date_recuperation, source, url,
			contact_nom, contact_telephone, contact_email, contact_whatsapp
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("%s: prepare insert: %w", s.dialect, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, l := range listings {
		retrieved := l.RetrievedAt
		if retrieved.IsZero() {
			retrieved = time.Now()
		}
		var url any
		if l.URL != "" {
			url = l.URL
		}
		res, err := stmt.ExecContext(ctx,
			l.ID, l.Title, l.Description, l.Image, int64(l.Price), l.Type, l.Neighborhood,
			l.Surface, l.Bedrooms, l.PublishedOn, retrieved.UTC(), l.Source, url,
			l.ContactName, l.ContactPhone, l.ContactEmail, l.ContactWhatsApp)
		if err != nil {
			return inserted, fmt.Errorf("%s: insert annonce %d: %w", s.dialect, l.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", s.dialect, err)
	}
	return inserted, nil
}

const selectColumns = `
	SELECT id, titre, description, image, prix, type, quartier, surface, chambres,
	       date_publication, date_recuperation, source, COALESCE(url, ''),
	       contact_nom, contact_telephone, contact_email, contact_whatsapp
	FROM annonces`

// All returns every stored listing matching f, newest first.
func (s *SQLStore) All(ctx context.Context, f models.Filters) ([]*models.Listing, error) {
	return s.query(ctx, "", f)
}

// Today returns the listings published on day.
func (s *SQLStore) Today(ctx context.Context, day time.Time, f models.Filters) ([]*models.Listing, error) {
	return s.query(ctx, day.Format(models.DateLayout), f)
}

func (s *SQLStore) query(ctx context.Context, date string, f models.Filters) ([]*models.Listing, error) {
	var where []string
	var args []any
	if date != "" {
		where = append(where, "date_publication = ?")
		args = append(args, date)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Neighborhood)); q != "" {
		where = append(where, s.containsExpr("quartier"))
		args = append(args, q)
	}
	if t := strings.ToLower(strings.TrimSpace(f.Type)); t != "" {
		where = append(where, s.containsExpr("type"))
		args = append(args, t)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_recuperation DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query annonces: %w", s.dialect, err)
	}
	defer rows.Close()

	listings := make([]*models.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect, err)
		}
		listings = append(listings, withDefaultImage(l))
	}
	return listings, rows.Err()
}

// Get returns one listing by id, or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id int64) (*models.Listing, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectColumns+" WHERE id = ?"), id)
	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: get annonce %d: %w", s.dialect, id, err)
	}
	return withDefaultImage(l), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(r rowScanner) (*models.Listing, error) {
	l := &models.Listing{}
	var price int64
	err := r.Scan(
		&l.ID, &l.Title, &l.Description, &l.Image, &price, &l.Type, &l.Neighborhood,
		&l.Surface, &l.Bedrooms, &l.PublishedOn, &l.RetrievedAt, &l.Source, &l.URL,
		&l.ContactName, &l.ContactPhone, &l.ContactEmail, &l.ContactWhatsApp,
	)
	if err != nil {
		return nil, err
	}
	l.Price = models.Price(price)
	return l, nil
}

// Neighborhoods returns the distinct neighborhood names, sorted.
func (s *SQLStore) Neighborhoods(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT quartier FROM annonces WHERE quartier <> '' ORDER BY quartier`)
	if err != nil {
		return nil, fmt.Errorf("%s: query quartiers: %w", s.dialect, err)
	}
	defer rows.Close()

	quartiers := make([]string, 0)
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("%s: scan quartier: %w", s.dialect, err)
		}
		quartiers = append(quartiers, q)
	}
	return quartiers, rows.Err()
}

// Statistics computes the header counts in one pass over the table.
func (s *SQLStore) Statistics(ctx context.Context, day time.Time) (models.Statistics, error) {
	var st models.Statistics
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN date_publication = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0),
		       COUNT(DISTINCT quartier)
		FROM annonces`),
		day.Format(models.DateLayout), models.TypeSale, models.TypeRental,
	).Scan(&st.TotalListings, &st.PublishedToday, &st.Sales, &st.Rentals, &st.ActiveNeighborhoods)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("%s: statistics: %w", s.dialect, err)
	}
	return st, nil
}

// Clear deletes all existing listings from the table.
func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM annonces"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.dialect, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ ListingStore = (*SQLStore)(nil)
