// Package config loads typed configuration structs from the
// environment, optionally exporting a .env file first.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvFileVar names the variable that points at an alternate env file.
// When unset, ./.env is exported if present.
const EnvFileVar = "AGENT_ENV_FILE"

// MustNew loads T under prefix, resolving the env file from EnvFileVar.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix, os.Getenv(EnvFileVar))
	if err != nil {
		panic(err)
	}
	return conf
}

// New loads T from the environment under prefix. A non-empty envFile
// must exist and is exported before processing; an empty envFile falls
// back to ./.env when that file is present.
func New[T any](prefix string, envFile string) (*T, error) {
	envFile = strings.TrimSpace(envFile)
	if envFile != "" {
		if err := exportEnvironment(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load default env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
