package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlagappanMk24/Gymunity/internal/config"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed"}, names)

	migrate, _, err := root.Find([]string{"migrate", "status"})
	require.NoError(t, err)
	assert.Equal(t, "status", migrate.Name())

	ddl, _, err := root.Find([]string{"migrate", "spanner"})
	require.NoError(t, err)
	assert.Equal(t, "spanner", ddl.Name())

	flag := root.PersistentFlags().Lookup("env-file")
	require.NotNil(t, flag)
	assert.Equal(t, ".env", flag.DefValue)
}

func TestLoad_RejectsMissingSigningKey(t *testing.T) {
	t.Setenv("JWT_AUTH_KEY", "")
	opts := &rootOptions{envFile: "testdata/none.env"}

	_, _, err := opts.load()

	assert.ErrorContains(t, err, "JWT_AUTH_KEY")
}

func TestSpannerConfig(t *testing.T) {
	var cfg config.Config
	cfg.Spanner.ProjectID = "gym"
	cfg.Spanner.InstanceID = "main"
	cfg.Spanner.DatabaseID = "accounts"
	cfg.Spanner.Role = "reader"

	sc := spannerConfig(cfg)

	assert.Equal(t, "projects/gym/instances/main/databases/accounts", sc.DSN())
	assert.Equal(t, "reader", sc.DatabaseRole)
}
