package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Option adds a configuration source.
type Option func(*loader)

type loader struct {
	yamlFiles []string
	dotEnv    []string
	environ   map[string]string
	prefix    string
}

// WithYAMLFile reads flat KEY: value pairs from path as the lowest
// precedence layer.
func WithYAMLFile(path string) Option {
	return func(l *loader) {
		if path != "" {
			l.yamlFiles = append(l.yamlFiles, path)
		}
	}
}

// WithDotEnv reads .env files. Earlier files win over later ones, as with
// godotenv.Load.
func WithDotEnv(paths ...string) Option {
	return func(l *loader) {
		l.dotEnv = append(l.dotEnv, paths...)
	}
}

// WithEnviron replaces the process environment. Used in tests.
func WithEnviron(environ map[string]string) Option {
	return func(l *loader) {
		l.environ = environ
	}
}

// WithPrefix prepends prefix to every env key looked up.
func WithPrefix(prefix string) Option {
	return func(l *loader) {
		l.prefix = prefix
	}
}

// Load fills v from the configured sources.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	merged, err := l.environment()
	if err != nil {
		return err
	}

	if err := env.ParseWithOptions(v, env.Options{
		Environment: merged,
		Prefix:      l.prefix,
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load that panics on failure, for configuration a process
// cannot start without.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func (l *loader) environment() (map[string]string, error) {
	merged := make(map[string]string)

	for _, path := range l.yamlFiles {
		values, err := readYAML(path)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	// godotenv gives precedence to the first file that sets a key.
	for i := len(l.dotEnv) - 1; i >= 0; i-- {
		values, err := godotenv.Read(l.dotEnv[i])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Join(ErrReadingSource, err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}

	environ := l.environ
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	for k, v := range environ {
		merged[k] = v
	}
	return merged, nil
}

func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(ErrReadingSource, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrReadingSource, fmt.Errorf("%s: %w", path, err))
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			values[k] = ""
		case []any:
			parts := make([]string, len(val))
			for i, p := range val {
				parts[i] = fmt.Sprint(p)
			}
			values[k] = strings.Join(parts, ",")
		case map[string]any:
			return nil, errors.Join(ErrReadingSource, fmt.Errorf("%s: key %q must be a scalar or list", path, k))
		default:
			values[k] = fmt.Sprint(val)
		}
	}
	return values, nil
}
