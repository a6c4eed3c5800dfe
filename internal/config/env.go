// Package config reads the environment driven defaults of the sandbox.
package config

import (
	"os"
	"strconv"
)

const (
	EnvLogLevel = "PHYSICS2D_LOG_LEVEL"
	EnvScene    = "PHYSICS2D_SCENE"
	EnvSteps    = "PHYSICS2D_STEPS"
)

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. Unparsable values yield fallback.
func GetEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
