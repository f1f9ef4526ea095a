// Package pathsafety sanitizes filesystem path components and performs
// case-insensitive-safe renames, following the Windows/DOS reserved-name
// and invalid-character conventions common to cross-platform file tools.
package pathsafety

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sortbook/authors/internal/foundation/errors"
)

// invalidChars are disallowed in a single path component on at least one
// of the major filesystems this pipeline targets.
const invalidChars = `<>:"/\|?*`

// reservedDeviceNames are DOS/Windows device names that cannot be used as
// a file or directory stem, case-insensitively, with or without extension.
var reservedDeviceNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// SanitizeComponent replaces every invalid or control character with "_",
// strips trailing dots and spaces, guards against reserved device names,
// and never returns an empty string. The result is a fixed point: calling
// SanitizeComponent on its own output returns the same string unchanged.
func SanitizeComponent(c string) string {
	var b strings.Builder
	b.Grow(len(c))
	for _, r := range c {
		switch {
		case strings.ContainsRune(invalidChars, r):
			b.WriteByte('_')
		case r < 0x20:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.TrimRight(b.String(), ". ")

	if out == "" {
		return "_"
	}

	if isReservedDeviceName(out) {
		return "_" + out
	}

	return out
}

// isReservedDeviceName reports whether the stem of name (name without its
// final extension), compared case-insensitively, is a reserved DOS/Windows
// device name.
func isReservedDeviceName(name string) bool {
	stem := name
	if ext := filepath.Ext(name); ext != "" {
		stem = strings.TrimSuffix(name, ext)
	}
	_, reserved := reservedDeviceNames[strings.ToLower(stem)]
	return reserved
}

// AlreadyExists is returned by RenameWithCaseHandling when dst exists and
// is not the same directory entry as src.
type AlreadyExists struct {
	Path string
}

func (e *AlreadyExists) Error() string {
	return fmt.Sprintf("pathsafety: destination already exists: %s", e.Path)
}

// RenameWithCaseHandling renames src to dst, working around case-insensitive
// filesystems that otherwise no-op a rename that only changes letter case.
//
// If src and dst are byte-for-byte identical, this is a no-op. If they
// differ only in case, the rename goes through a unique intermediate name
// in the same parent directory so the filesystem can't collapse the two
// names into a single rename that it treats as already satisfied. If dst
// exists and does not refer to the same directory entry as src, it returns
// *AlreadyExists.
func RenameWithCaseHandling(src, dst string) error {
	if src == dst {
		return nil
	}

	if !strings.EqualFold(src, dst) {
		return renameToFreeDestination(src, dst)
	}

	// Case-only difference: route through a unique intermediate name in
	// the same parent so filesystems that collapse renames differing only
	// in case (APFS default, NTFS, HFS+) still observe two real renames.
	// On a case-sensitive filesystem dst may be a distinct entry already.
	if srcInfo, err := os.Lstat(src); err == nil {
		if dstInfo, err := os.Lstat(dst); err == nil && !os.SameFile(srcInfo, dstInfo) {
			return &AlreadyExists{Path: dst}
		}
	}
	parent := filepath.Dir(src)
	intermediate := filepath.Join(parent, "."+uuid.NewString()+".sortbook-tmp")

	if err := os.Rename(src, intermediate); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "rename to intermediate name").
			WithContext("src", src).WithContext("intermediate", intermediate).Build()
	}
	if err := os.Rename(intermediate, dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "rename from intermediate name to destination").
			WithContext("intermediate", intermediate).WithContext("dst", dst).Build()
	}
	return nil
}

// renameToFreeDestination renames src to dst when the two names differ by
// more than case, failing with *AlreadyExists if dst is occupied by
// something other than src itself.
func renameToFreeDestination(src, dst string) error {
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "stat rename source").
			WithContext("src", src).Build()
	}

	if dstInfo, err := os.Lstat(dst); err == nil {
		if !os.SameFile(srcInfo, dstInfo) {
			return &AlreadyExists{Path: dst}
		}
		// Same inode under a different-looking path on a case-preserving,
		// case-insensitive filesystem: nothing left to do.
		return nil
	} else if !os.IsNotExist(err) {
		return errors.WrapError(err, errors.CategoryFileSystem, "stat rename destination").
			WithContext("dst", dst).Build()
	}

	if err := os.Rename(src, dst); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "rename").
			WithContext("src", src).WithContext("dst", dst).Build()
	}
	return nil
}
