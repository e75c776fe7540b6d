package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Loadenv loads .env files (default ".env") into the process environment. Variables that
// are already set keep their value. A missing file is not an error.
func Loadenv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
