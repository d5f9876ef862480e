package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bcnelson/yatube/internal/domain"
	"github.com/bcnelson/yatube/internal/storage/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes yatubectl against a sqlite database and returns its output.
func run(t *testing.T, dsn, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db-driver", "sqlite3", "--db-dsn", dsn}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func tempDSN(t *testing.T) string {
	return filepath.Join(t.TempDir(), "yatube.db")
}

func TestMigrate(t *testing.T) {
	dsn := tempDSN(t)
	output, err := run(t, dsn, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, output, "schema version 2")
	assert.Contains(t, output, "driver: sqlite3")
}

func TestGroupLifecycle(t *testing.T) {
	dsn := tempDSN(t)

	output, err := run(t, dsn, "", "group", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No groups yet")

	output, err = run(t, dsn, "", "group", "create", "--title", "Тестовая группа", "--description", "Описание")
	require.NoError(t, err)
	assert.Contains(t, output, "/group/testovaia-gruppa/")

	_, err = run(t, dsn, "", "group", "create", "--title", "Cats", "--slug", "cats")
	require.NoError(t, err)

	_, err = run(t, dsn, "", "group", "create", "--title", "More cats", "--slug", "cats")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	output, err = run(t, dsn, "", "group", "list")
	require.NoError(t, err)
	assert.Contains(t, output, "SLUG")
	assert.Contains(t, output, "cats")
	assert.Contains(t, output, "testovaia-gruppa")

	output, err = run(t, dsn, "", "group", "delete", "cats")
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted group cats")

	_, err = run(t, dsn, "", "group", "delete", "cats")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGroupCreateRequiresTitle(t *testing.T) {
	_, err := run(t, tempDSN(t), "", "group", "create")
	assert.Error(t, err)
}

func TestUserCreate(t *testing.T) {
	dsn := tempDSN(t)

	output, err := run(t, dsn, "correct horse\n", "user", "create", "alice", "--email", "alice@example.com", "--name", "Alice Liddell", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, output, "Created user alice")

	store, err := sql.New("sqlite3", dsn)
	require.NoError(t, err)
	defer store.Close()

	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", user.FullName)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestUserCreateInvalid(t *testing.T) {
	dsn := tempDSN(t)

	output, err := run(t, dsn, "short\n", "user", "create", "bob", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, output, "password")

	_, err = run(t, dsn, "correct horse\n", "user", "create", "bob", "--password-stdin")
	require.NoError(t, err)

	output, err = run(t, dsn, "correct horse\n", "user", "create", "bob", "--password-stdin")
	require.Error(t, err)
	assert.Contains(t, output, "already exists")
}

func TestReadPasswordLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"secret\n", "secret"},
		{"secret\r\n", "secret"},
		{"no newline", "no newline"},
		{"first\nsecond\n", "first"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := readPasswordLine(strings.NewReader(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
