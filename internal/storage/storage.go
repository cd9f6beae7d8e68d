// Package storage opens the post repository named by a database URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/inkwell/inkwell/internal/repository"
	"github.com/inkwell/inkwell/internal/repository/memory"
	"github.com/inkwell/inkwell/internal/repository/mongodb"
	"github.com/inkwell/inkwell/internal/repository/postgres"
	"github.com/inkwell/inkwell/internal/repository/sqlite"
)

// ErrUnsupportedScheme is returned for database URLs no backend understands.
var ErrUnsupportedScheme = errors.New("unsupported database URL scheme")

// Backend names returned by Scheme.
const (
	BackendPostgres = "postgres"
	BackendMongoDB  = "mongodb"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Scheme reports which backend serves databaseURL.
func Scheme(databaseURL string) (string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(databaseURL, "mongodb://"), strings.HasPrefix(databaseURL, "mongodb+srv://"):
		return BackendMongoDB, nil
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "file:"):
		return BackendSQLite, nil
	case strings.HasPrefix(databaseURL, "memory://"):
		return BackendMemory, nil
	}

	scheme, _, _ := strings.Cut(databaseURL, ":")
	return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

// Open connects to the backend named by the URL scheme.
func Open(ctx context.Context, databaseURL string) (repository.PostRepository, error) {
	backend, err := Scheme(databaseURL)
	if err != nil {
		return nil, err
	}

	var repo repository.PostRepository
	switch backend {
	case BackendPostgres:
		repo, err = openPostgres(ctx, databaseURL)
	case BackendMongoDB:
		repo, err = openMongoDB(ctx, databaseURL)
	case BackendSQLite:
		repo, err = openSQLite(ctx, sqlitePath(databaseURL))
	default:
		repo = memory.New()
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}

	return repo, nil
}

func openPostgres(ctx context.Context, databaseURL string) (repository.PostRepository, error) {
	repo, err := postgres.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openMongoDB(ctx context.Context, databaseURL string) (repository.PostRepository, error) {
	repo, err := mongodb.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openSQLite(ctx context.Context, path string) (repository.PostRepository, error) {
	repo, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// unparseable replaces URLs whose credentials cannot be located.
const unparseable = "<unparseable>"

// Redact hides the password in a database URL so it can be logged.
func Redact(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return redactRaw(databaseURL)
	}
	if u.User == nil {
		return databaseURL
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

// redactRaw masks the userinfo of a URL that net/url rejects.
func redactRaw(databaseURL string) string {
	scheme, rest, ok := strings.Cut(databaseURL, "://")
	at := strings.LastIndex(rest, "@")
	if !ok || at < 0 {
		return unparseable
	}
	user, _, _ := strings.Cut(rest[:at], ":")
	return scheme + "://" + user + ":xxxxx" + rest[at:]
}

// sqlitePath turns sqlite://relative/path and sqlite:///abs/path into
// driver paths. file: URIs are passed through unchanged.
func sqlitePath(databaseURL string) string {
	if path, ok := strings.CutPrefix(databaseURL, "sqlite://"); ok {
		return path
	}
	return databaseURL
}
