package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/gossipchain/business/sys/validate"
	"github.com/stretchr/testify/require"
)

func TestReadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  difficulty: 2\n"), 0600))

	t.Setenv("NODE_SETTINGS_FILE", path)
	data, err := readSettingsFile()
	require.NoError(t, err)
	require.Contains(t, string(data), "difficulty: 2")

	t.Setenv("NODE_SETTINGS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	data, err = readSettingsFile()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestValidateSettings(t *testing.T) {
	good := Settings{MinTxPerBlock: 3, Difficulty: 4, ConcurrentHashes: 1000}
	require.NoError(t, validate.Check(good))

	tt := []Settings{
		{MinTxPerBlock: -1, Difficulty: 4, ConcurrentHashes: 1000},
		{MinTxPerBlock: 3, Difficulty: 65, ConcurrentHashes: 1000},
		{MinTxPerBlock: 3, Difficulty: 4, ConcurrentHashes: 0},
	}
	for _, s := range tt {
		err := validate.Check(s)
		require.Error(t, err)
		require.True(t, validate.IsFieldErrors(err))
	}

	db := good.Database()
	require.Equal(t, 3, db.MinTxPerBlock)
	require.Equal(t, uint64(1000), db.ConcurrentHashes)
}
