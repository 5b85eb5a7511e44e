package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew_JSONCarriesServiceAndEnv(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Service: "domaincli", Env: "production", Level: "info", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug("hidden")
	log.Info("hello")
	Sync(log)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one json line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "hello" || line["service"] != "domaincli" || line["env"] != "production" {
		t.Fatalf("line=%v", line)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}
