package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// DefaultIdleTimeout is how long a helper process may sit unused before it is stopped.
const DefaultIdleTimeout = 30 * time.Second

// ErrScriptNotFound is returned when a helper script cannot be located.
var ErrScriptNotFound = errors.New("helper script not found")

// Service runs a Python MediaPipe helper as a subprocess and exchanges frames with it.
//
// Each request is an 8-byte big-endian timestamp in milliseconds, a 4-byte
// big-endian payload length and a JPEG payload. Each response is a single
// JSON line. The process starts lazily on the first request and is stopped
// after IdleTimeout without requests.
type Service struct {
	script      string
	args        []string
	logger      *zap.Logger
	IdleTimeout time.Duration
	// Interpreter runs the script. Empty picks a venv python, then python3.
	Interpreter string

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	started   bool
	idleTimer *time.Timer
}

// NewService locates the named helper script and prepares a Service for it.
func NewService(scriptName string, args []string, logger *zap.Logger) (*Service, error) {
	script := FindScript(scriptName)
	if script == "" {
		return nil, fmt.Errorf("%s: %w", scriptName, ErrScriptNotFound)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		script:      script,
		args:        args,
		logger:      logger,
		IdleTimeout: DefaultIdleTimeout,
	}, nil
}

// Exchange sends one frame to the helper and decodes its JSON reply into out.
func (s *Service) Exchange(frame *gocv.Mat, timestampMs int64, out any) error {
	if frame == nil || frame.Empty() {
		return errors.New("empty frame")
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return err
	}

	if err := writeFrame(s.stdin, timestampMs, buf.GetBytes()); err != nil {
		s.abort(err)
		return err
	}

	line, err := s.stdout.ReadBytes('\n')
	if err != nil {
		err = fmt.Errorf("read response: %w", err)
		s.abort(err)
		return err
	}

	if err := json.Unmarshal(line, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	s.resetIdleTimer()
	return nil
}

// Close shuts down the helper process.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *Service) ensureStarted() error {
	if s.started {
		return nil
	}

	interpreter := s.Interpreter
	if interpreter == "" {
		interpreter = findVenvPython()
	}
	if interpreter == "" {
		interpreter = "python3"
	}

	s.cmd = exec.Command(interpreter, append([]string{s.script}, s.args...)...)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(s.script), err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true
	s.logger.Info("helper started",
		zap.String("script", s.script),
		zap.Int("pid", s.cmd.Process.Pid))

	return nil
}

func (s *Service) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil

	return err
}

// abort stops a helper whose pipe broke so the next request starts a fresh one.
func (s *Service) abort(cause error) {
	s.logger.Warn("helper failed, stopping", zap.String("script", s.script), zap.Error(cause))
	if err := s.shutdown(); err != nil {
		s.logger.Debug("helper exit", zap.Error(err))
	}
}

func (s *Service) resetIdleTimer() {
	if s.IdleTimeout <= 0 {
		return
	}
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(s.IdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.logger.Info("helper idle, stopping", zap.String("script", s.script))
		if err := s.shutdown(); err != nil {
			s.logger.Warn("helper exit", zap.Error(err))
		}
	})
}

// writeFrame writes a single request in the helper wire format.
func writeFrame(w io.Writer, timestampMs int64, data []byte) error {
	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[:8], uint64(timestampMs))
	binary.BigEndian.PutUint32(header[8:], uint32(len(data)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// FindScript searches the usual install locations for a helper script.
func FindScript(name string) string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", name),
		filepath.Join("..", "scripts", name),
		filepath.Join(execDir, "scripts", name),
		filepath.Join(os.Getenv("HOME"), ".handsign", "scripts", name),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".handsign/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
