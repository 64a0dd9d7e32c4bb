package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultPlayerTimeout bounds playback of a single utterance.
const DefaultPlayerTimeout = 60 * time.Second

// Player plays synthesized audio.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// ExecPlayer pipes audio into an external command such as ffplay.
type ExecPlayer struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewExecPlayer parses a command line like "ffplay -nodisp -autoexit -".
func NewExecPlayer(command string, timeout time.Duration) (*ExecPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("speech: empty player command")
	}
	if timeout <= 0 {
		timeout = DefaultPlayerTimeout
	}
	return &ExecPlayer{name: fields[0], args: fields[1:], timeout: timeout}, nil
}

// Play runs the command with the audio on stdin and waits for it to exit.
func (p *ExecPlayer) Play(ctx context.Context, audio []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(audio)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("player timeout after %s", p.timeout)
	}
	if err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return fmt.Errorf("player failed: %w, stderr: %s", err, s)
		}
		return fmt.Errorf("player failed: %w", err)
	}
	return nil
}
