package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentMoveFile checks that concurrent moves into the same scene
// never lose a file: every colliding layer is renamed instead.
func TestConcurrentMoveFile(t *testing.T) {
	tmpDir := t.TempDir()
	srcDir := filepath.Join(tmpDir, "source")
	destDir := filepath.Join(tmpDir, "destination", "Scene1")
	require.NoError(t, os.MkdirAll(srcDir, 0755))

	engine := New()

	const n = 50
	var srcFiles []string
	for i := 0; i < n; i++ {
		src := filepath.Join(srcDir, fmt.Sprintf("run%02d.tif", i))
		require.NoError(t, os.WriteFile(src, []byte(fmt.Sprintf("content %d", i)), 0644))
		srcFiles = append(srcFiles, src)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	wg.Add(n)
	for _, src := range srcFiles {
		go func(src string) {
			defer wg.Done()
			// Every file targets the same layer name.
			if _, err := engine.MoveFile(src, filepath.Join(destDir, "DNA1.tif")); err != nil {
				errs <- err
			}
		}(src)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("MoveFile failed: %v", err)
	}

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Len(t, entries, n, "Every file should land under a unique name")

	for _, src := range srcFiles {
		assert.NoFileExists(t, src)
	}
}
