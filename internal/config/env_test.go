package config_test

import (
	"testing"

	"github.com/ByteArena/physics2d/internal/config"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PHYSICS2D_TEST_VALUE", "debug")

	if got := config.GetEnv("PHYSICS2D_TEST_VALUE", "info"); got != "debug" {
		t.Fatalf("GetEnv = %q, want %q", got, "debug")
	}

	if got := config.GetEnv("PHYSICS2D_TEST_MISSING", "info"); got != "info" {
		t.Fatalf("GetEnv fallback = %q, want %q", got, "info")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("PHYSICS2D_TEST_STEPS", "240")
	t.Setenv("PHYSICS2D_TEST_BAD", "many")

	if got := config.GetEnvInt("PHYSICS2D_TEST_STEPS", 60); got != 240 {
		t.Fatalf("GetEnvInt = %d, want 240", got)
	}

	if got := config.GetEnvInt("PHYSICS2D_TEST_BAD", 60); got != 60 {
		t.Fatalf("GetEnvInt on garbage = %d, want 60", got)
	}
}
