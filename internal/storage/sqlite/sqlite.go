// Package sqlite records received TDLib objects in a SQLite database.
package sqlite

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/tdlib-go/tdjson-go/internal/storage/sqlite/migrations"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
)

// RecorderConfig is the configuration for the recorder.
type RecorderConfig struct {
	DBPath string
	Logger logging.Logger
}

func (c *RecorderConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = logging.Noop
	}
	c.Logger = c.Logger.With("svc", "storage.SQLite")
	return nil
}

// Update is one recorded object.
type Update struct {
	ID         string
	Type       string
	Extra      string // JSON text of "@extra", empty when absent.
	Payload    tdjson.Object
	ReceivedAt time.Time
}

// ListOptions filters List results.
type ListOptions struct {
	// Type keeps only objects with this "@type".
	Type string
	// Limit caps the number of results; 0 means no limit.
	Limit int
}

// Recorder stores objects received from a tdjson client.
type Recorder struct {
	db     *sql.DB
	logger logging.Logger
}

// NewRecorder opens (creating if needed) the database and applies migrations.
func NewRecorder(ctx context.Context, cfg RecorderConfig) (*Recorder, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debug(ctx, "recorder initialized", "path", cfg.DBPath)

	return &Recorder{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error { return r.db.Close() }

// Save stores obj as received at the given time and returns its id.
func (r *Recorder) Save(ctx context.Context, obj tdjson.Object, at time.Time) (string, error) {
	payload, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("could not encode object: %w", err)
	}

	var extra *string
	if v, ok := obj.Extra(); ok {
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("could not encode @extra: %w", err)
		}
		s := string(data)
		extra = &s
	}

	id := ulid.MustNew(ulid.Timestamp(at), rand.Reader).String()

	query := `
		INSERT INTO updates (id, type, extra, payload, received_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, id, obj.Type(), extra, string(payload), at.UnixNano()); err != nil {
		return "", fmt.Errorf("could not insert update: %w", err)
	}

	r.logger.Debug(ctx, "recorded update", "id", id, "type", obj.Type())
	return id, nil
}

// List returns recorded objects, newest first.
func (r *Recorder) List(ctx context.Context, opts ListOptions) ([]Update, error) {
	query := `SELECT id, type, extra, payload, received_at FROM updates`
	var args []any
	if opts.Type != "" {
		query += ` WHERE type = ?`
		args = append(args, opts.Type)
	}
	query += ` ORDER BY received_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query updates: %w", err)
	}
	defer rows.Close()

	var updates []Update
	for rows.Next() {
		var (
			u          Update
			extra      sql.NullString
			payload    string
			receivedAt int64
		)
		if err := rows.Scan(&u.ID, &u.Type, &extra, &payload, &receivedAt); err != nil {
			return nil, fmt.Errorf("could not scan update: %w", err)
		}
		u.Extra = extra.String
		u.ReceivedAt = time.Unix(0, receivedAt).UTC()

		dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
		dec.UseNumber()
		if err := dec.Decode(&u.Payload); err != nil {
			return nil, fmt.Errorf("could not decode update %s: %w", u.ID, err)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate updates: %w", err)
	}

	return updates, nil
}
