package file

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileName is the dotenv file read at startup.
const EnvFileName = ".env"

// LoadEnv loads dotenv files into the process environment. Variables that
// are already set are never overridden, so earlier paths win over later
// ones. Missing files are skipped. With no paths it reads ./.env and then
// ~/.docqa/.env.
func LoadEnv(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{EnvFileName}
		if dir, err := DefaultDir(); err == nil {
			paths = append(paths, filepath.Join(dir, EnvFileName))
		}
	}

	var loaded []string
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
