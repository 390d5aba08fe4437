package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"WooFeedSync/internal/database"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "feed.xlsx")
	db := filepath.Join(dir, "db.db")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"SKU", "Name", "sync_status"},
		{"A1", "One", "ok"},
		{"A2", "Two", "error"},
		{"A3", "Three", ""},
	}
	for i, r := range rows {
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &r))
	}
	require.NoError(t, f.SaveAs(xlsx))
	require.NoError(t, f.Close())

	ini := fmt.Sprintf("[FEED]\nPath = %s\n\n[DBSQLITE]\nDB = %s\n\n[LOG]\nDir =\n", xlsx, db)
	path := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(ini), 0o600))
	return path, db
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestStatsCommand(t *testing.T) {
	path, _ := writeConfig(t)
	out := execute(t, "--config", path, "stats")
	assert.Equal(t, "total: 3\nsynced: 1\nerrors: 1\npending: 1\n", out)
}

func TestStopCommand(t *testing.T) {
	path, dbPath := writeConfig(t)
	assert.Equal(t, "stop requested\n", execute(t, "--config", path, "stop"))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	set, err := database.NewStopFlag(db).IsSet()
	require.NoError(t, err)
	assert.True(t, set)

	assert.Empty(t, execute(t, "--config", path, "runs"))
}

func TestMissingConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "none.ini"), "stats"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
