// Package postgres implements the post repository on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

const selectColumns = `id, author_first_name, author_last_name, title, content, created`

// Repository stores posts in the blog_posts table.
type Repository struct {
	pool *pgxpool.Pool
}

var _ repository.PostRepository = (*Repository)(nil)

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Name returns the backend name.
func (r *Repository) Name() string {
	return "postgres"
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// List retrieves every post, oldest first.
func (r *Repository) List(ctx context.Context) ([]*model.BlogPost, error) {
	query := `SELECT ` + selectColumns + ` FROM blog_posts ORDER BY created ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
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
	query := `SELECT ` + selectColumns + ` FROM blog_posts WHERE id = $1`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return post, nil
}

// Create inserts a new post.
func (r *Repository) Create(ctx context.Context, post *model.BlogPost) error {
	row := prepare(post)

	if _, err := r.pool.Exec(ctx, insertQuery, insertArgs(row)...); err != nil {
		return fmt.Errorf("failed to create post: %w", mapInsertError(err))
	}

	post.ID, post.Created = row.ID, row.Created
	return nil
}

// CreateMany inserts posts in one transaction using pgx.Batch.
func (r *Repository) CreateMany(ctx context.Context, posts []*model.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}

	rows := make([]*model.BlogPost, 0, len(posts))
	batch := &pgx.Batch{}
	for _, post := range posts {
		row := prepare(post)
		rows = append(rows, row)
		batch.Queue(insertQuery, insertArgs(row)...)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert post batch: %w", mapInsertError(err))
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close post batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit posts: %w", err)
	}

	for i, post := range posts {
		post.ID, post.Created = rows[i].ID, rows[i].Created
	}
	return nil
}

// Update replaces a post's mutable fields.
func (r *Repository) Update(ctx context.Context, post *model.BlogPost) error {
	query := `
		UPDATE blog_posts
		SET author_first_name = $2, author_last_name = $3, title = $4, content = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Author.FirstName,
		post.Author.LastName,
		post.Title,
		post.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

// Count returns the number of stored posts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blog_posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// DeleteAll truncates the posts table.
func (r *Repository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `TRUNCATE TABLE blog_posts`); err != nil {
		return fmt.Errorf("failed to truncate posts: %w", err)
	}
	return nil
}

const insertQuery = `
	INSERT INTO blog_posts (id, author_first_name, author_last_name, title, content, created)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// uniqueViolation is the SQLSTATE for a duplicate primary key.
const uniqueViolation = "23505"

func insertArgs(post *model.BlogPost) []any {
	return []any{
		post.ID,
		post.Author.FirstName,
		post.Author.LastName,
		post.Title,
		post.Content,
		post.Created,
	}
}

// prepare returns a copy of post with its ID and creation time assigned.
// Postgres stores microseconds, so the timestamp is truncated to round-trip exactly.
func prepare(post *model.BlogPost) *model.BlogPost {
	row := post.Clone()
	if row.ID == "" {
		row.ID = ulid.Make().String()
	}
	if row.Created.IsZero() {
		row.Created = time.Now().UTC()
	}
	row.Created = row.Created.UTC().Truncate(time.Microsecond)
	return row
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrPostExists
	}
	return err
}

// scanPost scans a single row into a BlogPost model.
func scanPost(row pgx.Row) (*model.BlogPost, error) {
	var post model.BlogPost
	err := row.Scan(
		&post.ID,
		&post.Author.FirstName,
		&post.Author.LastName,
		&post.Title,
		&post.Content,
		&post.Created,
	)
	if err != nil {
		return nil, err
	}
	post.Created = post.Created.UTC()
	return &post, nil
}
