package file

import (
	"os"
	"path/filepath"
)

// HomeEnv names the environment variable that relocates the coach home directory.
const HomeEnv = "COACH_HOME"

// HomeDir returns the coach home directory: $COACH_HOME when set,
// otherwise ~/.coach.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".coach"), nil
}
