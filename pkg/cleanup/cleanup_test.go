// pkg/cleanup/cleanup_test.go

package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "AnsysEM")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "v231", "Win64"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "v231", "config.ini"), []byte("x"), 0644))

	require.NoError(t, RemoveDirectory(target))

	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveDirectoryAlreadyAbsent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "never-created")

	assert.NoError(t, RemoveDirectory(target))
	assert.NoError(t, RemoveDirectory(target), "removal is idempotent")
}

func TestRemoveShortcuts(t *testing.T) {
	dir := t.TempDir()
	matching := filepath.Join(dir, "ANSYS EM Suite 2023 R1")
	other := filepath.Join(dir, "Some Other App")
	require.NoError(t, os.MkdirAll(matching, 0755))
	require.NoError(t, os.MkdirAll(other, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(matching, "Electronics Desktop.lnk"), []byte("x"), 0644))

	require.NoError(t, RemoveShortcuts(dir, "ANSYS EM Suite*"))

	_, err := os.Stat(matching)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(other)
	assert.NoError(t, err, "non-matching entries stay")
}

func TestRemoveShortcutsNoMatches(t *testing.T) {
	assert.NoError(t, RemoveShortcuts(t.TempDir(), "ANSYS EM Suite*"))
}
