package state

import (
	"os"
	"path/filepath"

	"github.com/versioio/versio/internal/fsutil"
	"github.com/versioio/versio/internal/verr"
)

func fileExists(root, path string) bool {
	return fsutil.Exists(filepath.Join(root, path))
}

func readWorkingFile(root, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		return nil, verr.Wrap(verr.FileNotFound, err, "reading %q", path)
	}
	return data, nil
}
