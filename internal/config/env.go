package config

import (
	"fmt"
	"strings"
)

// Validate reports the first required setting that is missing.
func (c Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"MONGO_URI", c.MongoURI},
		{"JWT_SECRET", c.JWTSecret},
		{"DB_NAME", c.DBName},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("ENV %s is required", r.key)
		}
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	return nil
}
