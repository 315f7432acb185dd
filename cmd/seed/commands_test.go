package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/models"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func memoryOpener(svc *users.Service) serviceOpener {
	return func(context.Context) (*users.Service, func(), error) {
		return svc, func() {}, nil
	}
}

func run(t *testing.T, open serviceOpener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndPurge(t *testing.T) {
	svc := users.NewService(users.NewMemoryUserRepository(), users.NewHasher(bcrypt.MinCost))
	file := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"username": "jason", "email": "jason@example.com", "password": "secret"},
		{"username": "mia", "email": "mia@example.com", "password": "hunter2"}
	]`), 0o600))

	out, err := run(t, memoryOpener(svc), "users", file)
	require.NoError(t, err)
	require.Contains(t, out, "seeded 2 users")

	ok, err := svc.Verify(context.Background(), models.Credentials{Email: "mia@example.com", Password: "hunter2"})
	require.NoError(t, err)
	require.True(t, ok)

	// seeding the same file again collides on the unique fields
	_, err = run(t, memoryOpener(svc), "users", file)
	require.Error(t, err)

	out, err = run(t, memoryOpener(svc), "users", "--purge", file)
	require.NoError(t, err)
	require.Contains(t, out, "seeded 2 users")

	out, err = run(t, memoryOpener(svc), "purge")
	require.NoError(t, err)
	require.Contains(t, out, "deleted 2 users")

	page, err := svc.Search(context.Background(), pagination.Request{Limit: 10})
	require.NoError(t, err)
	require.Zero(t, page.Meta.Total)
}

func TestSeedRejectsBadInput(t *testing.T) {
	opened := false
	open := func(context.Context) (*users.Service, func(), error) {
		opened = true
		return nil, nil, nil
	}

	_, err := run(t, open, "users")
	require.Error(t, err)

	_, err = run(t, open, "users", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	require.False(t, opened)
}

func TestReadUsers(t *testing.T) {
	list, err := readUsers(strings.NewReader(`[{"username":"a","email":"a@x.io"}]`))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a", list[0].Username)

	_, err = readUsers(strings.NewReader(`{"username":"a"}`))
	require.Error(t, err)

	_, err = readUsers(strings.NewReader(`[{"username":"a"}]`))
	require.ErrorContains(t, err, "user 0")
}
