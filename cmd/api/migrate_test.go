package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carowners/api/internal/data"
)

type fakeMigrator struct {
	upErr  error
	steps  []int
	downs  int
	ups    int
	closed bool
}

func (f *fakeMigrator) Up() error                    { f.ups++; return f.upErr }
func (f *fakeMigrator) Down() error                  { f.downs++; return nil }
func (f *fakeMigrator) Steps(n int) error            { f.steps = append(f.steps, n); return nil }
func (f *fakeMigrator) Version() (uint, bool, error) { return 1, false, nil }
func (f *fakeMigrator) Close() (error, error)        { f.closed = true; return nil, nil }

func useFakeMigrator(t *testing.T, f *fakeMigrator) *string {
	t.Helper()

	var gotDSN string
	orig := newMigrator
	newMigrator = func(dsn string) (data.Migrator, error) {
		gotDSN = dsn
		return f, nil
	}
	t.Cleanup(func() { newMigrator = orig })
	return &gotDSN
}

func TestMigrateUpIgnoresNoChange(t *testing.T) {
	f := &fakeMigrator{upErr: migrate.ErrNoChange}
	dsn := useFakeMigrator(t, f)

	err := migrateUp(slog.New(slog.NewTextHandler(io.Discard, nil)), "postgres://db")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db", *dsn)
	assert.Equal(t, 1, f.ups)
	assert.True(t, f.closed)
}

func TestMigrateCommands(t *testing.T) {
	f := &fakeMigrator{}
	dsn := useFakeMigrator(t, f)

	run := func(args ...string) {
		t.Helper()
		cmd := newRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
	}

	run("migrate", "up", "--db-dsn=postgres://migrations")
	assert.Equal(t, "postgres://migrations", *dsn)
	assert.Equal(t, 1, f.ups)

	run("migrate", "down", "--db-dsn=postgres://migrations", "-n", "2")
	assert.Equal(t, []int{-2}, f.steps)

	run("migrate", "down", "--db-dsn=postgres://migrations")
	assert.Equal(t, 1, f.downs)
}
