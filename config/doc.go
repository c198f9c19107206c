// Package config loads service configuration from a YAML file, a .env file
// and the process environment into a caller-owned struct.
//
//	var cfg bootstrap.Config
//	err := config.LoadConfig("invoxia", &cfg,
//	    config.WithEnvAliases(map[string][]string{"auth.jwt.secret": {"JWT_SECRET"}}))
//
// Environment variables override file values. AUTH_JWT_SECRET binds to
// auth.jwt.secret, DATABASE_URL to database.url, and so on.
package config
