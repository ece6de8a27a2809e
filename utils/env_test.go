package utils

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("RES_TEST_STR", "  value ")
	t.Setenv("RES_TEST_BOOL", "yes")
	t.Setenv("RES_TEST_INT", "nope")
	t.Setenv("RES_TEST_DUR", "90s")
	t.Setenv("RES_TEST_LIST", "a, ,b,")

	assert.Equal(t, "value", EnvOrDefault("RES_TEST_STR", "x"))
	assert.Equal(t, "x", EnvOrDefault("RES_TEST_MISSING", "x"))
	assert.True(t, EnvBool("RES_TEST_BOOL", false))
	assert.Equal(t, 7, EnvInt("RES_TEST_INT", 7))
	assert.Equal(t, 90*time.Second, EnvDuration("RES_TEST_DUR", time.Second))
	assert.Equal(t, []string{"a", "b"}, EnvList("RES_TEST_LIST", nil))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
