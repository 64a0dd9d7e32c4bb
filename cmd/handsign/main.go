// Command handsign plays rock-paper-scissors against the computer using
// finger counts seen by the webcam, and wraps the gesture recognizer and
// the text-to-speech service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/config"
	"github.com/ayusman/handsign/internal/logging"
)

const usage = `usage: handsign <command> [flags]

commands:
  play        play rock-paper-scissors against the bot
  count       count fingers and show the matching throw
  recognize   recognize the gesture in an image file
  live        recognize gestures in the camera stream
  speak       speak or save text with the cloud voice
  serve       run the HTTP API only
`

// env is what every subcommand shares.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"play":      runPlay,
	"count":     runCount,
	"recognize": runRecognize,
	"live":      runLive,
	"speak":     runSpeak,
	"serve":     runServe,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, cfg.DevLog)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	e := &env{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}
	if err := cmd(ctx, e, args[1:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			return 2
		case errors.Is(err, capture.ErrCameraUnavailable):
			fmt.Fprintf(stderr, "Cannot open camera %d: %v\n", cfg.CameraID, err)
		default:
			fmt.Fprintf(stderr, "handsign %s: %v\n", args[0], err)
		}
		return 1
	}
	return 0
}
