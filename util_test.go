package tsngen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDirectories(t *testing.T) {
	dir := t.TempDir()

	ok, err := CheckDirectories([]string{dir, ""})
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = CheckDirectories([]string{filepath.Join(dir, "absent")})
	assert.False(t, ok)
	require.Error(t, err)
}

func TestCheckOutputFiles(t *testing.T) {
	dir := t.TempDir()

	// files in an existing directory, bare names, and empty names all pass
	ok, err := CheckOutputFiles([]string{
		filepath.Join(dir, "topo.yaml"), "scenario.yaml", ""})
	assert.True(t, ok)
	assert.NoError(t, err)

	// a file whose directory portion does not exist cannot be written
	ok, err = CheckOutputFiles([]string{
		filepath.Join(dir, "absent", "topo.yaml")})
	assert.False(t, ok)
	require.Error(t, err)
}
