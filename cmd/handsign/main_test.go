package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	t.Setenv("HANDSIGN_DB_PATH", filepath.Join(t.TempDir(), "handsign.db"))
	t.Setenv("HANDSIGN_LOG_LEVEL", "error")
	t.Setenv("SPEECH_KEY", "")
	t.Setenv("SPEECH_REGION", "")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "usage: handsign") {
		t.Errorf("expected usage, got %q", stderr)
	}

	code, _, _ = runCLI(t, "help")
	if code != 0 {
		t.Errorf("help exit code = %d, want 0", code)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "dance")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, `unknown command "dance"`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRun_BadFlag(t *testing.T) {
	code, _, _ := runCLI(t, "play", "--no-such-flag")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRun_InvalidMapping(t *testing.T) {
	code, _, stderr := runCLI(t, "play", "--mapping", "loose", "--headless")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, `unknown mapping "loose"`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRun_InvalidBot(t *testing.T) {
	code, _, stderr := runCLI(t, "play", "--bot", "lizard", "--headless")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, `unknown throw "lizard"`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRun_SpeakWithoutCredentials(t *testing.T) {
	code, _, stderr := runCLI(t, "speak", "hello")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "SPEECH_KEY") {
		t.Errorf("expected a hint about SPEECH_KEY, got %q", stderr)
	}
}

func TestRun_SpeakWithoutText(t *testing.T) {
	code, _, _ := runCLI(t, "speak")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRun_SpeakVoices(t *testing.T) {
	code, stdout, _ := runCLI(t, "speak", "--voices", "--lang", "fr-FR")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "fr-FR-DeniseNeural") {
		t.Errorf("expected French voices, got %q", stdout)
	}
	if strings.Contains(stdout, "en-US") {
		t.Errorf("unexpected non-French voice in %q", stdout)
	}
}

func TestRun_RecognizeWithoutImage(t *testing.T) {
	code, _, _ := runCLI(t, "recognize")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestDashboardURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080/"},
		{"0.0.0.0:9000", "http://localhost:9000/"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080/"},
		{"[::]:8080", "http://localhost:8080/"},
		{"[::1]:8080", "http://[::1]:8080/"},
		{"example.test", "http://example.test/"},
	}
	for _, tt := range tests {
		if got := dashboardURL(tt.addr); got != tt.want {
			t.Errorf("dashboardURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
