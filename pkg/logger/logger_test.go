package logx

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitSetsLevel(t *testing.T) {
	Init(Config{Debug: true, Service: "test"})
	if got := log.Logger.GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", got)
	}

	Init(Config{})
	if got := log.Logger.GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", got)
	}
}
