package event

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeSeed is a test helper that writes one seed YAML file into dir.
func writeSeed(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFileSystemSeedRepository_Load(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "family.yaml", `
events:
  - year: 1987
    month: 6
    day: 15
    title: "birthday"
    actor: "alice"
  - month: 12
    day: 31
    title: "new year's eve"
`)

	repo, err := NewFileSystemSeedRepository(dir)
	require.NoError(t, err)

	defs := repo.Definitions()
	require.Len(t, defs, 2)

	require.Equal(t, int64(0), defs[0].UID)
	require.NotNil(t, defs[0].OriginYear)
	require.Equal(t, 1987, *defs[0].OriginYear)
	require.Equal(t, time.June, defs[0].Month)
	require.Equal(t, 15, defs[0].Day)
	require.Equal(t, "alice", defs[0].Actor)

	require.Equal(t, int64(1), defs[1].UID)
	require.Nil(t, defs[1].OriginYear)
	require.Equal(t, "new year's eve", defs[1].Title)
}

func TestFileSystemSeedRepository_MissingDirIsEmpty(t *testing.T) {
	repo, err := NewFileSystemSeedRepository(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, repo.Definitions())
}

func TestFileSystemSeedRepository_InvalidEntry(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "broken.yaml", `
events:
  - month: 2
    day: 30
    title: "impossible"
`)

	_, err := NewFileSystemSeedRepository(dir)
	require.Error(t, err)
}

func TestFileSystemSeedRepository_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeSeed(t, dir, "garbage.yaml", `events: [`)

	_, err := NewFileSystemSeedRepository(dir)
	require.Error(t, err)
}
