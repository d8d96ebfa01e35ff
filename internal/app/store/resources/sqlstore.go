// internal/app/store/resources/sqlstore.go
package resourcestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/kinderhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"

	_ "modernc.org/sqlite"
)

// SQLStore is a Repository on SQLite, used for local development and
// tests where no MongoDB deployment is available.
type SQLStore struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite doesn't support multiple writers, and each new connection to
	// ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	return db, nil
}

const sqlSchema = `
CREATE TABLE IF NOT EXISTS resources (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	subject     TEXT NOT NULL,
	type        TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT NOT NULL,
	tags        TEXT NOT NULL DEFAULT '[]',
	likes       INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER
);
CREATE INDEX IF NOT EXISTS idx_resources_subject ON resources(subject);
`

// EnsureSchema creates the resources table and its indexes. Idempotent.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqlSchema); err != nil {
		return fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, title, subject, type, url, description, tags, likes, created_at, updated_at FROM resources`

func (s *SQLStore) ListAll(ctx context.Context) ([]models.Resource, error) {
	out, err := s.query(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, unavailable("list resources", err)
	}
	return out, nil
}

func (s *SQLStore) ListBySubject(ctx context.Context, subject models.Subject) ([]models.Resource, error) {
	out, err := s.query(ctx, selectColumns+` WHERE subject = ? ORDER BY seq`, string(subject))
	if err != nil {
		return nil, unavailable("list resources by subject", err)
	}
	return out, nil
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Resource
	for rows.Next() {
		var (
			r         models.Resource
			idHex     string
			subject   string
			typ       string
			tagsJSON  string
			createdMS int64
			updatedMS sql.NullInt64
		)
		if err := rows.Scan(&idHex, &r.Title, &subject, &typ, &r.URL, &r.Description,
			&tagsJSON, &r.Likes, &createdMS, &updatedMS); err != nil {
			return nil, err
		}
		if r.ID, err = primitive.ObjectIDFromHex(idHex); err != nil {
			return nil, fmt.Errorf("row %q: %w", idHex, err)
		}
		// Subject and type are stored verbatim; unknown values surface
		// through Subject.Valid / Badge rather than being coerced here.
		r.Subject = models.Subject(subject)
		r.Type = models.ResourceType(typ)
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return nil, fmt.Errorf("row %q tags: %w", idHex, err)
		}
		r.CreatedAt = time.UnixMilli(createdMS).UTC()
		if updatedMS.Valid {
			t := time.UnixMilli(updatedMS.Int64).UTC()
			r.UpdatedAt = &t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return normalize(out), nil
}

func (s *SQLStore) Create(ctx context.Context, in models.ResourceInput) (primitive.ObjectID, error) {
	r := in.Resource(primitive.NewObjectID())
	tagsJSON, err := json.Marshal(r.Tags)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resources (id, title, subject, type, url, description, tags, likes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.Hex(), r.Title, string(r.Subject), string(r.Type), r.URL, r.Description,
		string(tagsJSON), r.Likes, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return primitive.NilObjectID, unavailable("create resource", err)
	}
	return r.ID, nil
}

func (s *SQLStore) Update(ctx context.Context, id primitive.ObjectID, patch models.ResourcePatch) error {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Subject != nil {
		add("subject", string(*patch.Subject))
	}
	if patch.Type != nil {
		add("type", string(*patch.Type))
	}
	if patch.URL != nil {
		add("url", *patch.URL)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Tags != nil {
		tagsJSON, err := json.Marshal(patch.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		add("tags", string(tagsJSON))
	}
	if patch.Likes != nil {
		add("likes", max(*patch.Likes, 0))
	}
	add("updated_at", time.Now().UTC().UnixMilli())
	args = append(args, id.Hex())

	res, err := s.db.ExecContext(ctx, `UPDATE resources SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return unavailable("update resource", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("update resource", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id.Hex()); err != nil {
		return unavailable("delete resource", err)
	}
	return nil
}

func (s *SQLStore) Like(ctx context.Context, id primitive.ObjectID) (int, error) {
	var likes int
	err := s.db.QueryRowContext(ctx,
		`UPDATE resources SET likes = likes + 1 WHERE id = ? RETURNING likes`, id.Hex(),
	).Scan(&likes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, unavailable("like resource", err)
	}
	return likes, nil
}
