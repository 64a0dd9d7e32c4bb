package detector

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// fakeHelper writes a shell script standing in for a MediaPipe helper and
// returns a Service that runs it.
func fakeHelper(t *testing.T, script string, args ...string) *Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping helper process test in short mode")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	path := filepath.Join(t.TempDir(), "helper.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write helper: %v", err)
	}

	svc := &Service{
		script:      path,
		args:        args,
		logger:      zap.NewNop(),
		Interpreter: "sh",
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func newTestFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return &m
}

func TestHelperArgs(t *testing.T) {
	got := helperArgs(DefaultConfig())
	want := []string{"--max-hands", "1", "--min-detection", "0.50", "--min-tracking", "0.50"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("helperArgs() = %q, want %q", got, want)
	}

	cfg := DefaultConfig()
	cfg.ModelPath = "/opt/models/hands.task"
	got = helperArgs(cfg)
	if n := len(got); n < 2 || got[n-2] != "--model" || got[n-1] != cfg.ModelPath {
		t.Errorf("helperArgs() = %q, want trailing --model %s", got, cfg.ModelPath)
	}
}

func TestMediaPipeDetector_HelperError(t *testing.T) {
	svc := fakeHelper(t, `printf '{"hands": [], "error": "could not decode frame"}\n'
cat >/dev/null
`)
	d := &MediaPipeDetector{config: DefaultConfig(), service: svc, start: time.Now()}

	hands, err := d.Detect(newTestFrame(t))
	if hands != nil {
		t.Errorf("expected no hands, got %d", len(hands))
	}

	var helperErr *HelperError
	if !errors.As(err, &helperErr) {
		t.Fatalf("expected *HelperError, got %v", err)
	}
	if helperErr.Message != "could not decode frame" {
		t.Errorf("Message = %q", helperErr.Message)
	}
}

func TestMediaPipeDetector_Hands(t *testing.T) {
	svc := fakeHelper(t, `printf '{"hands": [{"points": [{"x": 0.5, "y": 0.25, "z": 0}], "handedness": "Left", "score": 0.9}]}\n'
cat >/dev/null
`)
	d := &MediaPipeDetector{config: DefaultConfig(), service: svc, start: time.Now()}

	hands, err := d.Detect(newTestFrame(t))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 hand, got %d", len(hands))
	}
	if hands[0].Handedness != "Left" || hands[0].Points[0].X != 0.5 {
		t.Errorf("unexpected hand %+v", hands[0])
	}
}

func TestService_RestartsAfterHelperDies(t *testing.T) {
	// The first run exits without replying; later runs answer normally.
	marker := filepath.Join(t.TempDir(), "started")
	svc := fakeHelper(t, `if [ -f "$1" ]; then
  printf '{"hands": []}\n'
  cat >/dev/null
else
  : > "$1"
  exit 1
fi
`, marker)
	frame := newTestFrame(t)

	var out struct {
		Hands []JSONHand `json:"hands"`
	}
	if err := svc.Exchange(frame, 1, &out); err == nil {
		t.Fatal("expected error from a helper that exited")
	}
	if svc.started {
		t.Fatal("a failed exchange should stop the helper")
	}

	if err := svc.Exchange(frame, 2, &out); err != nil {
		t.Fatalf("Exchange() after restart error = %v", err)
	}
	if !svc.started {
		t.Error("helper should be running after a successful exchange")
	}
}
