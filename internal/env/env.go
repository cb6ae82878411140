package env

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads dotenv files in order. Missing files are skipped, and variables
// already set in the process environment are never overwritten.
func Load(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}
