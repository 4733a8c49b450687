// Package session owns the local access credential. The session is an
// explicit object with a load/save lifecycle: the gateway receives it at
// construction instead of reading a process-global.
package session

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSession is returned when an authenticated call is attempted without a
// stored credential. Callers route it to the login flow.
var ErrNoSession = errors.New("not logged in")

// Session is the current access credential plus the account it belongs to.
// A Session handed to the gateway is read from request goroutines; swap in a
// fresh value instead of writing fields of a shared one.
type Session struct {
	Access  string
	Email   string
	SavedAt time.Time
}

// Valid reports whether the session carries a usable token.
func (s *Session) Valid() bool {
	return s != nil && strings.TrimSpace(s.Access) != ""
}

// Token returns the bearer token or ErrNoSession.
func (s *Session) Token() (string, error) {
	if !s.Valid() {
		return "", ErrNoSession
	}
	return s.Access, nil
}

// Store persists the session (and remembered login passwords) in a local
// SQLite database under Dir.
type Store struct {
	Dir string
}

func (s Store) path() string {
	return filepath.Join(filepath.Clean(s.Dir), "state.sqlite")
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return nil, errors.New("session store dir is empty")
	}
	if err := os.MkdirAll(filepath.Clean(s.Dir), 0o700); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path())
	if err != nil {
		return nil, err
	}
	// WAL + busy_timeout avoid "database is locked" when a TUI and a CLI
	// invocation touch the state db at the same time.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	if err := s.migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s Store) migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			saved_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS remembered_logins (
			email TEXT PRIMARY KEY,
			secret TEXT NOT NULL
		);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

// Load returns the stored session, or ErrNoSession when none is saved.
func (s Store) Load(ctx context.Context) (*Session, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var sess Session
	var savedAt string
	row := db.QueryRowContext(ctx, `SELECT access, email, saved_at FROM session WHERE id = 1`)
	if err := row.Scan(&sess.Access, &sess.Email, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339, savedAt); err == nil {
		sess.SavedAt = ts
	}
	if !sess.Valid() {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Save stores the session, replacing any previous one.
func (s Store) Save(ctx context.Context, sess *Session) error {
	if !sess.Valid() {
		return errors.New("refusing to save an empty session")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	savedAt := sess.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO session (id, access, email, saved_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET access = excluded.access, email = excluded.email, saved_at = excluded.saved_at`,
		sess.Access, sess.Email, savedAt.Format(time.RFC3339))
	return err
}

// Clear drops the stored session (logout). Clearing when nothing is stored is
// not an error.
func (s Store) Clear(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	return err
}

// RememberLogin stores the password for an email so the login form can
// prefill it. Obfuscation only (base64); this is a convenience, not a vault.
func (s Store) RememberLogin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return errors.New("email is empty")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	secret := base64.StdEncoding.EncodeToString([]byte(password))
	_, err = db.ExecContext(ctx,
		`INSERT INTO remembered_logins (email, secret) VALUES (?, ?)
		 ON CONFLICT(email) DO UPDATE SET secret = excluded.secret`,
		email, secret)
	return err
}

// RememberedLogin returns the stored password for an email, if any.
func (s Store) RememberedLogin(ctx context.Context, email string) (string, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	db, err := s.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var secret string
	row := db.QueryRowContext(ctx, `SELECT secret FROM remembered_logins WHERE email = ?`, email)
	if err := row.Scan(&secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", false, nil
	}
	return string(raw), true, nil
}

// ForgetLogin removes a remembered password.
func (s Store) ForgetLogin(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM remembered_logins WHERE email = ?`, email)
	return err
}
