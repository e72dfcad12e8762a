package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURLFromEnv_Missing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := databaseURLFromEnv()
	require.Error(t, err)
}

func TestDatabaseURLFromEnv_Set(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/boavaga")

	url, err := databaseURLFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/boavaga", url)
}

func TestMigrateCmd_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	for _, sub := range []string{"up", "down", "status"} {
		t.Run(sub, func(t *testing.T) {
			cmd := NewMigrateCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs([]string{sub})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "DATABASE_URL")
		})
	}
}
