package configuration

import (
	"os"
	"path/filepath"

	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
)

// LoadEnv loads envFiles from the working directory, or from the module root
// (the nearest parent holding go.mod) when the working directory has none.
// It returns how many files were loaded.
func LoadEnv(envFiles []string) (int, error) {
	found := presentIn("", envFiles)
	if len(found) == 0 {
		if root := findModuleRoot(); root != "" {
			found = presentIn(root, envFiles)
		}
	}
	if len(found) == 0 {
		return 0, nil
	}
	return len(found), godotenv.Load(found...)
}

func presentIn(dir string, names []string) []string {
	var out []string
	for _, name := range names {
		if p := filepath.Join(dir, name); fs.FileExists(p) {
			out = append(out, p)
		}
	}
	return out
}

func findModuleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
	}
	return ""
}
