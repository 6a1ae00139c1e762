package library

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotAbsolute is returned for relative paths where an absolute one is
// required.
var ErrNotAbsolute = errors.New("path must be absolute")

var windowsDrive = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// IsAbsolute reports whether p is absolute in Unix ("/...") or Windows
// ("C:\..." or "C:/...") form, independent of the host OS.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/") || windowsDrive.MatchString(p)
}

// FlattenPath turns an absolute path into a single filename token by joining
// its components with "_". A Windows drive contributes its letter; the Unix
// root contributes nothing.
//
//	C:\Users\me\Docs -> C_Users_me_Docs
//	/mnt/hdd1/docs   -> mnt_hdd1_docs
func FlattenPath(p string) (string, error) {
	if !IsAbsolute(p) {
		return "", fmt.Errorf("%w: %s", ErrNotAbsolute, p)
	}

	var parts []string
	if windowsDrive.MatchString(p) {
		parts = append(parts, p[:1])
		parts = append(parts, strings.FieldsFunc(p[3:], func(r rune) bool {
			return r == '\\' || r == '/'
		})...)
	} else {
		parts = strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	}
	return strings.Join(parts, "_"), nil
}
