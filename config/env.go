package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// LoadENV reads a .env file when one exists. Values already present in the
// process environment take precedence, and a missing file is not an error.
func LoadENV() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("you must set your 'JWT_SECRET' environmental variable")
	}

	return nil
}
