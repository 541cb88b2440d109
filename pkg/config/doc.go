// Package config loads typed configuration from layered sources into a
// struct annotated with github.com/caarlos0/env/v11 tags.
//
// Sources, lowest precedence first:
//
//  1. a YAML file of flat KEY: value pairs (WithYAMLFile)
//  2. .env files read with github.com/joho/godotenv (WithDotEnv)
//  3. the process environment
//
// envDefault tags apply only when no source sets a key.
//
//	type Config struct {
//		Issuer string `env:"TWOFA_ISSUER" envDefault:"Securify"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg, config.WithDotEnv(".env")); err != nil {
//		return err
//	}
//
// Missing files are skipped; malformed files are an error.
package config
