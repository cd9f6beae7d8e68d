// Package sqlite implements the post repository on SQLite.
// Intended for local development and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

//go:embed schema.sql
var schemaSQL string

const selectColumns = `id, author_first_name, author_last_name, title, content, created_ns`

// Repository stores posts in a SQLite database file.
type Repository struct {
	db *sql.DB
}

var _ repository.PostRepository = (*Repository)(nil)

// Open creates or opens a SQLite database at path and applies the schema.
func Open(ctx context.Context, path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Name returns the backend name.
func (r *Repository) Name() string {
	return "sqlite"
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// List retrieves every post, oldest first.
func (r *Repository) List(ctx context.Context) ([]*model.BlogPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM blog_posts ORDER BY created_ns ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.BlogPost, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// Get retrieves a post by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*model.BlogPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM blog_posts WHERE id = ?`, id)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return post, nil
}

// Create inserts a new post.
func (r *Repository) Create(ctx context.Context, post *model.BlogPost) error {
	row := prepare(post)
	if _, err := r.db.ExecContext(ctx, insertQuery, insertArgs(row)...); err != nil {
		return fmt.Errorf("failed to create post: %w", mapInsertError(err))
	}

	post.ID, post.Created = row.ID, row.Created
	return nil
}

// CreateMany inserts posts inside one transaction.
func (r *Repository) CreateMany(ctx context.Context, posts []*model.BlogPost) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := make([]*model.BlogPost, 0, len(posts))
	for _, post := range posts {
		row := prepare(post)
		if _, err := stmt.ExecContext(ctx, insertArgs(row)...); err != nil {
			return fmt.Errorf("failed to insert post: %w", mapInsertError(err))
		}
		rows = append(rows, row)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}

	for i, post := range posts {
		post.ID, post.Created = rows[i].ID, rows[i].Created
	}
	return nil
}

// Update replaces a post's mutable fields.
func (r *Repository) Update(ctx context.Context, post *model.BlogPost) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE blog_posts
		SET author_first_name = ?, author_last_name = ?, title = ?, content = ?
		WHERE id = ?
	`, post.Author.FirstName, post.Author.LastName, post.Title, post.Content, post.ID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	return requireAffected(result)
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return requireAffected(result)
}

// Count returns the number of stored posts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// DeleteAll removes every post.
func (r *Repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts`); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	return nil
}

const insertQuery = `
	INSERT INTO blog_posts (id, author_first_name, author_last_name, title, content, created_ns)
	VALUES (?, ?, ?, ?, ?, ?)
`

func insertArgs(post *model.BlogPost) []any {
	return []any{
		post.ID,
		post.Author.FirstName,
		post.Author.LastName,
		post.Title,
		post.Content,
		post.Created.UnixNano(),
	}
}

// prepare returns a copy of post with its ID and creation time assigned.
func prepare(post *model.BlogPost) *model.BlogPost {
	row := post.Clone()
	if row.ID == "" {
		row.ID = ulid.Make().String()
	}
	if row.Created.IsZero() {
		row.Created = time.Now()
	}
	row.Created = row.Created.UTC()
	return row
}

func mapInsertError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return repository.ErrPostExists
	}
	return err
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrPostNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*model.BlogPost, error) {
	var (
		post      model.BlogPost
		createdNs int64
	)
	err := row.Scan(
		&post.ID,
		&post.Author.FirstName,
		&post.Author.LastName,
		&post.Title,
		&post.Content,
		&createdNs,
	)
	if err != nil {
		return nil, err
	}
	post.Created = time.Unix(0, createdNs).UTC()
	return &post, nil
}
