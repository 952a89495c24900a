// Package fsutil holds small filesystem predicates shared across versio's
// packages.
package fsutil

import (
	"os"
)

// Exists reports whether pathname names an existing filesystem entry.
func Exists(pathname string) bool {
	_, err := os.Stat(pathname)
	return !os.IsNotExist(err)
}
