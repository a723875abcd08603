// Package sqlitepath resolves the sqlite-vec index file used by the default
// local vector store.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/coursewise/pkg/dotdir"
)

// DefaultFileName is the index file created inside .coursewise/.
const DefaultFileName = "coursewise.sqlite"

// ResolveSQLitePath returns override when set, then COURSEWISE_SQLITE, then
// the index inside an explicit configDir, then the first existing candidate
// file. Otherwise it returns the default path inside the resolved
// .coursewise/ directory.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("COURSEWISE_SQLITE")); envPath != "" {
		return envPath, nil
	}

	if configDir != "" {
		return dotdir.NewManager().Path(configDir, DefaultFileName)
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return dotdir.NewManager().Path(configDir, DefaultFileName)
}

func sqliteCandidates() []string {
	candidates := []string{
		filepath.Join(".coursewise", DefaultFileName),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".coursewise", DefaultFileName))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "coursewise", DefaultFileName),
		}, candidates...)
	}

	return candidates
}
