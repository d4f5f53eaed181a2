package organize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenefuse/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backupsOf(t *testing.T, dir, name string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "Should be able to read destination directory")

	var backups []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), name+".bak.") {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}
	return backups
}

// TestBackupFunctionality tests the backup feature in detail
func TestBackupFunctionality(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "source")
	destDir := filepath.Join(tmpDir, "destination")
	require.NoError(t, os.MkdirAll(srcDir, 0755), "Failed to create source directory")

	cfg := config.NewTestConfig()
	cfg.Settings.Backup = true
	cfg.Settings.Collision = CollisionOverwrite

	t.Run("BasicBackupOnOverwrite", func(t *testing.T) {
		srcFile := filepath.Join(srcDir, "DNA1.tif")
		require.NoError(t, os.WriteFile(srcFile, []byte("new content"), 0644))

		sceneDir := filepath.Join(destDir, "Scene1")
		require.NoError(t, os.MkdirAll(sceneDir, 0755))
		destFile := filepath.Join(sceneDir, "DNA1.tif")
		require.NoError(t, os.WriteFile(destFile, []byte("old content"), 0644))

		engine := NewWithConfig(cfg)
		final, err := engine.MoveFile(srcFile, destFile)
		require.NoError(t, err, "MoveFile should succeed")
		assert.Equal(t, destFile, final)

		content, err := os.ReadFile(destFile)
		require.NoError(t, err)
		assert.Equal(t, "new content", string(content), "Destination should have new content")

		backups := backupsOf(t, sceneDir, "DNA1.tif")
		require.Len(t, backups, 1, "Backup file should exist")
		backupContent, err := os.ReadFile(backups[0])
		require.NoError(t, err)
		assert.Equal(t, "old content", string(backupContent), "Backup file should have old content")
	})

	t.Run("MultipleBackups", func(t *testing.T) {
		sceneDir := filepath.Join(destDir, "Scene2")
		require.NoError(t, os.MkdirAll(sceneDir, 0755))
		destFile := filepath.Join(sceneDir, "DNA1.tif")
		require.NoError(t, os.WriteFile(destFile, []byte("original content"), 0644))

		engine := NewWithConfig(cfg)
		for i := 1; i <= 3; i++ {
			srcFile := filepath.Join(srcDir, "DNA1.tif")
			require.NoError(t, os.WriteFile(srcFile, []byte("content version "+string(rune('0'+i))), 0644))

			_, err := engine.MoveFile(srcFile, destFile)
			require.NoError(t, err, "MoveFile should succeed")
		}

		assert.Len(t, backupsOf(t, sceneDir, "DNA1.tif"), 3, "Should have 3 backup files")

		content, err := os.ReadFile(destFile)
		require.NoError(t, err)
		assert.Equal(t, "content version 3", string(content), "Destination should have latest content")
	})

	t.Run("NoBackupWithoutExistingFile", func(t *testing.T) {
		srcFile := filepath.Join(srcDir, "DNA2.tif")
		require.NoError(t, os.WriteFile(srcFile, []byte("fresh"), 0644))
		destFile := filepath.Join(destDir, "Scene3", "DNA2.tif")

		engine := NewWithConfig(cfg)
		_, err := engine.MoveFile(srcFile, destFile)
		require.NoError(t, err)

		assert.FileExists(t, destFile)
		assert.Empty(t, backupsOf(t, filepath.Dir(destFile), "DNA2.tif"))
	})

	t.Run("BackupDisabled", func(t *testing.T) {
		sceneDir := filepath.Join(destDir, "Scene4")
		require.NoError(t, os.MkdirAll(sceneDir, 0755))
		destFile := filepath.Join(sceneDir, "DNA1.tif")
		require.NoError(t, os.WriteFile(destFile, []byte("old"), 0644))
		srcFile := filepath.Join(srcDir, "DNA1.tif")
		require.NoError(t, os.WriteFile(srcFile, []byte("new"), 0644))

		noBackup := config.NewTestConfig()
		noBackup.Settings.Backup = false
		noBackup.Settings.Collision = CollisionOverwrite

		_, err := NewWithConfig(noBackup).MoveFile(srcFile, destFile)
		require.NoError(t, err)
		assert.Empty(t, backupsOf(t, sceneDir, "DNA1.tif"))
	})
}
