// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` right after unmarshalling the merged Koanf
// tree.  Any failure aborts startup, so the binary never runs with partial
// or malformed configuration.
//
// Backend-conditional rules (`required_if=Backend mysql`) need the
// selected backend on the section itself, so the loader copies
// `store.backend` into Database and Redis before validating.

package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	c.Database.Backend = c.Store.Backend
	c.Redis.Backend = c.Store.Backend
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Store.Backend == "mysql" && strings.Count(c.Database.DSN, "%s") != 1 {
		return fmt.Errorf("database.dsn must contain exactly one %%s verb")
	}
	if c.Storage.Backend == "s3" && (c.Storage.S3.Bucket == "" || c.Storage.S3.Region == "") {
		return fmt.Errorf("storage.s3.bucket and storage.s3.region are required for the s3 backend")
	}
	return nil
}
