package pathsafety

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeComponent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"invalid characters replaced", `Hugo: "Les Misérables"?`, "Hugo_ _Les Misérables__"},
		{"trailing dot and space stripped", "Victor Hugo. ", "Victor Hugo"},
		{"reserved device name prefixed", "CON", "_CON"},
		{"reserved device name case-insensitive", "con", "_con"},
		{"reserved name with extension", "nul.txt", "_nul.txt"},
		{"empty becomes underscore", "", "_"},
		{"all-invalid becomes underscore after trim", "   ", "_"},
		{"ordinary name untouched", "Martin, Henri", "Martin, Henri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeComponent(tt.in))
		})
	}
}

func TestSanitizeComponentFixedPoint(t *testing.T) {
	inputs := []string{
		`Hugo: "Les Misérables"?`, "CON", "nul.txt", "", "   ", "Victor Hugo. ", "normal",
	}
	for _, in := range inputs {
		once := SanitizeComponent(in)
		twice := SanitizeComponent(once)
		assert.Equal(t, once, twice, "SanitizeComponent must be a fixed point for %q", in)
		assert.NotEmpty(t, once)
		assert.NotEqual(t, byte('.'), once[len(once)-1])
		assert.NotEqual(t, byte(' '), once[len(once)-1])
	}
}

func TestRenameWithCaseHandling_NoOp(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Martin, Henri")
	require.NoError(t, os.Mkdir(src, 0o755))

	require.NoError(t, RenameWithCaseHandling(src, src))
	assert.DirExists(t, src)
}

func TestRenameWithCaseHandling_PlainRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hugo victor")
	dst := filepath.Join(dir, "Hugo, Victor")
	require.NoError(t, os.Mkdir(src, 0o755))

	require.NoError(t, RenameWithCaseHandling(src, dst))
	assert.NoDirExists(t, src)
	assert.DirExists(t, dst)
}

func TestRenameWithCaseHandling_AlreadyExists(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source")
	dst := filepath.Join(dir, "dest")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.Mkdir(dst, 0o755))

	err := RenameWithCaseHandling(src, dst)
	require.Error(t, err)
	var alreadyExists *AlreadyExists
	assert.ErrorAs(t, err, &alreadyExists)
}

func TestRenameWithCaseHandling_CaseOnlyDifference(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "martin, henri")
	dst := filepath.Join(dir, "Martin, Henri")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.epub"), []byte("data"), 0o644))

	require.NoError(t, RenameWithCaseHandling(src, dst))

	// On a case-sensitive test filesystem src and dst are distinct paths;
	// the important invariant is no data loss and no leftover temp file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "sortbook-tmp")
	}
}
