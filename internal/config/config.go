package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	CorsConfig
	OIDCConfig
	SessionConfig
	DirectoryConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OIDC
	Session
	Directory
}

// New returns a Config backed only by environment variables.
func New() Config {
	return newMainConfig(&source{})
}

// Load returns a Config backed by environment variables with the YAML file at
// path as a fallback layer. Keys in the file use the environment variable
// names, e.g.
//
//	OIDC_CLIENT_ID: my-client
//	SESSION_MAX_AGE: 12h
//
// An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config Load] reading %s: %w", path, err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("[config Load] parsing %s: %w", path, err)
	}
	return newMainConfig(&source{file: values}), nil
}

func newMainConfig(src *source) mainConfig {
	return mainConfig{
		EnvVars:   EnvVars{src},
		Cors:      Cors{src},
		OIDC:      OIDC{src},
		Session:   Session{src},
		Directory: Directory{src},
	}
}

// source resolves a setting from the process environment first and the
// optional config file second.
type source struct {
	file map[string]string
}

func (s *source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if s != nil {
		if value, ok := s.file[envVar]; ok && value != "" {
			return value
		}
	}
	return defaultValue
}
