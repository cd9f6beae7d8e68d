package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/repository/sqlite"
)

func newTestRoot(t *testing.T, environment map[string]string) (*bytes.Buffer, func(args ...string) error) {
	t.Helper()

	buf := &bytes.Buffer{}
	run := func(args ...string) error {
		buf.Reset()
		cmd := newRootCommand(&RootOptions{Version: "test", Environment: environment})
		cmd.SetOut(buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}
	return buf, run
}

func sqliteEnv(t *testing.T) (map[string]string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.db")
	return map[string]string{
		"DATABASE_URL": "sqlite://" + path,
		"LOG_LEVEL":    "error",
	}, path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3")
	require.NotNil(t, cmd)
	assert.Equal(t, "inkwell", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)
	assert.NotNil(t, cmd.RunE, "root runs the server without a subcommand")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand("test")
	commands := []string{"serve", "seed", "migrate", "routes"}

	for _, cmdName := range commands {
		cmdName := cmdName
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := NewRootCommand("test")
	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)

	countFlag := seedCmd.Flags().Lookup("count")
	require.NotNil(t, countFlag)
	assert.Equal(t, "n", countFlag.Shorthand)
	assert.Equal(t, "9", countFlag.DefValue)

	clearFlag := seedCmd.Flags().Lookup("clear")
	require.NotNil(t, clearFlag)
	assert.Equal(t, "false", clearFlag.DefValue)
}

func TestSeed_SQLite(t *testing.T) {
	environment, path := sqliteEnv(t)
	out, run := newTestRoot(t, environment)

	require.NoError(t, run("seed", "--seed", "42"))
	assert.Equal(t, "seeded 9 posts into sqlite (9 total)\n", out.String())

	require.NoError(t, run("seed", "-n", "2"))
	assert.Equal(t, "seeded 2 posts into sqlite (11 total)\n", out.String())

	require.NoError(t, run("seed", "--clear", "--count", "3"))
	assert.Equal(t, "seeded 3 posts into sqlite (3 total)\n", out.String())

	repo, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer repo.Close()

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Content)
		assert.NotEmpty(t, p.AuthorName())
	}
}

func TestSeed_RejectsNegativeCount(t *testing.T) {
	environment, _ := sqliteEnv(t)
	_, run := newTestRoot(t, environment)

	err := run("seed", "--count=-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestSeed_MissingDatabaseURL(t *testing.T) {
	_, run := newTestRoot(t, map[string]string{})

	err := run("seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	environment, _ := sqliteEnv(t)
	_, run := newTestRoot(t, environment)

	err := run("migrate", "up")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPostgres)
}

func TestMigrate_RejectsUnknownDirection(t *testing.T) {
	environment, _ := sqliteEnv(t)
	_, run := newTestRoot(t, environment)

	err := run("migrate", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown direction")
}

func TestRoutes_Markdown(t *testing.T) {
	out, run := newTestRoot(t, nil)

	require.NoError(t, run("routes"))
	assert.Contains(t, out.String(), "/posts")
	assert.Contains(t, out.String(), "/healthz")
}

func TestRoutes_JSON(t *testing.T) {
	out, run := newTestRoot(t, nil)

	require.NoError(t, run("routes", "--json"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, out.String(), "/posts/*")
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServe_MemoryBackend(t *testing.T) {
	port := freePort(t)
	cmd := newRootCommand(&RootOptions{Version: "test", Environment: map[string]string{
		"DATABASE_URL":     "memory://",
		"APP_PORT":         fmt.Sprint(port),
		"LOG_LEVEL":        "error",
		"SHUTDOWN_TIMEOUT": "2s",
	}})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/posts", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
