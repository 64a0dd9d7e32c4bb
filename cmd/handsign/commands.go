package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/handsign/internal/app"
	"github.com/ayusman/handsign/internal/capture"
	"github.com/ayusman/handsign/internal/display"
	"github.com/ayusman/handsign/internal/game"
	"github.com/ayusman/handsign/internal/recognizer"
	"github.com/ayusman/handsign/internal/server"
	"github.com/ayusman/handsign/internal/speech"
	"github.com/ayusman/handsign/internal/ssml"
	"github.com/ayusman/handsign/internal/store"
	"github.com/ayusman/handsign/internal/tray"
)

// errUsage marks bad flags or arguments; the flag set has already printed why.
var errUsage = errors.New("usage")

func newFlagSet(e *env, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "usage: handsign %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

type gameFlags struct {
	mapping  string
	bot      string
	window   time.Duration
	serve    bool
	tray     bool
	speak    bool
	headless bool
}

func (g *gameFlags) register(fs *flag.FlagSet, e *env, withBot bool) {
	fs.StringVar(&g.mapping, "mapping", e.cfg.Mapping, "finger count to throw mapping: wide or strict")
	fs.DurationVar(&g.window, "window", e.cfg.StabilityWindow, "how long a count must hold before it is accepted")
	fs.BoolVar(&g.serve, "serve", false, "also run the HTTP API on HANDSIGN_ADDR")
	fs.BoolVar(&g.headless, "headless", false, "do not open a window")
	if withBot {
		fs.StringVar(&g.bot, "bot", e.cfg.Bot, "bot throw: random, rock, paper or scissors")
		fs.BoolVar(&g.tray, "tray", false, "show a system tray menu")
		fs.BoolVar(&g.speak, "speak", false, "announce each round with the cloud voice")
	}
}

func runPlay(ctx context.Context, e *env, args []string) error {
	var g gameFlags
	fs := newFlagSet(e, "play", "")
	g.register(fs, e, true)
	if err := parse(fs, args); err != nil {
		return err
	}
	return playGame(ctx, e, g, true)
}

func runCount(ctx context.Context, e *env, args []string) error {
	var g gameFlags
	fs := newFlagSet(e, "count", "")
	g.register(fs, e, false)
	if err := parse(fs, args); err != nil {
		return err
	}
	return playGame(ctx, e, g, false)
}

func playGame(ctx context.Context, e *env, g gameFlags, withBot bool) error {
	mapping, err := game.ParseMapping(g.mapping)
	if err != nil {
		return err
	}
	session := game.SessionConfig{Mapping: mapping, Window: g.window}
	if withBot {
		if session.Bot, err = game.ParseBot(g.bot); err != nil {
			return err
		}
	}

	st, err := store.New(e.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hub := server.NewHub(e.logger)
	publishers := app.Publishers{hub}

	var menu *tray.Tray
	if g.tray {
		menu = tray.New()
		publishers = append(publishers, menu)
	}

	var speaker app.Speaker
	if g.speak {
		client, err := newSpeechClient(e)
		if err != nil {
			return err
		}
		speaker = client
	}

	cfg := app.Config{
		CameraID:   e.cfg.CameraID,
		Flip:       e.cfg.Flip,
		HandsModel: e.cfg.HandsModelPath,
		Session:    session,
		Store:      st,
		Publisher:  publishers,
		Speaker:    speaker,
		Logger:     e.logger,
		Out:        e.stdout,
	}
	if !g.headless {
		cfg.Display = display.NewWindow(display.DefaultTitle, 1)
	}
	application := app.New(cfg)
	defer application.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		// Ending the loop stops the server and the tray with it.
		defer cancel()
		if withBot {
			return application.RunGame(gctx)
		}
		return application.RunCounter(gctx)
	})
	if g.serve {
		srv := server.New(server.Config{StaticDir: findWebDir(), Store: st, Hub: hub, Logger: e.logger})
		group.Go(func() error {
			return srv.ListenAndServe(gctx, e.cfg.Addr)
		})
	}

	if menu != nil {
		menu.OnToggle(func(paused bool) {
			if paused {
				application.Pause()
			} else {
				application.Resume()
			}
		})
		menu.OnQuit(cancel)
		if g.serve {
			url := dashboardURL(e.cfg.Addr)
			menu.OnOpen(func() {
				if err := openBrowser(url); err != nil {
					e.logger.Warn("open dashboard", zap.String("url", url), zap.Error(err))
				}
			})
		}
		go func() {
			<-gctx.Done()
			menu.Quit()
		}()
		// The tray owns the main thread until it quits.
		menu.Run()
	}

	return group.Wait()
}

func runRecognize(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "recognize", "<image>...")
	model := fs.String("model", e.cfg.ModelPath, "gesture recognizer model")
	save := fs.Bool("save", true, "store results in the database")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	engine, err := recognizer.NewMediaPipeEngine(recognizer.Options{ModelPath: *model}, e.logger)
	if err != nil {
		return err
	}
	rec := recognizer.New(engine, recognizer.Options{ModelPath: *model, Mode: recognizer.ModeImage}, e.logger)
	defer rec.Close()

	var st *store.Store
	if *save {
		if st, err = store.New(e.cfg.DBPath); err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	for _, path := range fs.Args() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		res, err := rec.RecognizeFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		top, ok := res.Top()
		if !ok {
			fmt.Fprintf(e.stdout, "%s: no gesture\n", path)
			continue
		}
		fmt.Fprintf(e.stdout, "%s: %s (%.2f)\n", path, top.Name, top.Score)

		if st != nil {
			err := st.Recognitions().Create(&store.Recognition{
				Source:      store.SourceImage,
				Path:        path,
				TimestampMs: res.TimestampMs,
				Gesture:     top.Name,
				Score:       top.Score,
				Hands:       len(res.Hands),
			})
			if err != nil {
				e.logger.Error("failed to store recognition", zap.Error(err))
			}
		}
	}
	return nil
}

func runLive(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "live", "")
	model := fs.String("model", e.cfg.ModelPath, "gesture recognizer model")
	motion := fs.Float64("motion", 0, "only submit frames where more than this percent of pixels changed; 0 submits all")
	headless := fs.Bool("headless", false, "do not open a window")
	if err := parse(fs, args); err != nil {
		return err
	}

	opts := recognizer.Options{ModelPath: *model, Mode: recognizer.ModeLiveStream}
	engine, err := recognizer.NewMediaPipeEngine(opts, e.logger)
	if err != nil {
		return err
	}
	rec := recognizer.New(engine, opts, e.logger)
	defer rec.Close()

	st, err := store.New(e.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cfg := app.Config{
		CameraID:   e.cfg.CameraID,
		Flip:       e.cfg.Flip,
		HandsModel: e.cfg.HandsModelPath,
		Store:      st,
		Logger:     e.logger,
		Out:        e.stdout,
	}
	if !*headless {
		cfg.Display = display.NewWindow(display.DefaultTitle, 1)
	}
	application := app.New(cfg)
	defer application.Close()

	gate := capture.NewMotionGate(*motion)
	defer gate.Close()

	return application.RunLive(ctx, rec, gate)
}

func runSpeak(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "speak", "<text>")
	save := fs.String("save", "", "write audio to this file instead of playing it; \"-\" names it after the current time")
	voice := fs.String("voice", "", "voice name, e.g. "+ssml.VoiceEnGBRyan)
	lang := fs.String("lang", "", "language tag, e.g. "+ssml.LangFrFR)
	style := fs.String("style", "", "speaking style, e.g. "+ssml.StyleCheerful)
	rate := fs.String("rate", "", "speaking rate, e.g. "+ssml.RateSlow)
	markup := fs.Bool("ssml", false, "treat the text as an SSML document")
	voices := fs.Bool("voices", false, "list the known voices for -lang and exit")
	if err := parse(fs, args); err != nil {
		return err
	}

	if *voices {
		for _, v := range ssml.VoicesFor(*lang) {
			fmt.Fprintf(e.stdout, "%s\t%s\t%s\n", v.Name, v.Language, v.Gender)
		}
		return nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	client, err := newSpeechClient(e)
	if err != nil {
		return err
	}

	text := fs.Arg(0)
	for _, more := range fs.Args()[1:] {
		text += " " + more
	}
	in := speech.Text(text)
	if *markup {
		doc, err := ssml.Parse([]byte(text))
		if err != nil {
			return err
		}
		in = speech.Markup(doc)
	}

	var opts []speech.Option
	if *voice != "" {
		opts = append(opts, speech.WithVoice(*voice))
	}
	if *lang != "" {
		opts = append(opts, speech.WithLanguage(*lang))
	}
	if *style != "" {
		opts = append(opts, speech.WithStyle(*style))
	}
	if *rate != "" {
		opts = append(opts, speech.WithRate(*rate))
	}

	var res *speech.Result
	if *save != "" {
		path := *save
		if path == "-" {
			path = ""
		}
		res, err = client.Save(ctx, in, path, opts...)
	} else {
		res, err = client.Speak(ctx, in, opts...)
	}
	if err != nil {
		var synth *speech.SynthesisError
		if errors.As(err, &synth) {
			fmt.Fprintf(e.stderr, "Speech synthesis canceled: %s\n", synth.Details.Reason)
			if synth.Details.ErrorDetails != "" {
				fmt.Fprintf(e.stderr, "Error details: %s\n", synth.Details.ErrorDetails)
			}
		}
		return err
	}

	if res.Path != "" {
		fmt.Fprintf(e.stdout, "Speech saved to %s\n", res.Path)
	} else {
		fmt.Fprintf(e.stdout, "Speech synthesized for text [%s]\n", text)
	}
	return nil
}

func runServe(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "serve", "")
	addr := fs.String("addr", e.cfg.Addr, "listen address")
	static := fs.String("static", findWebDir(), "directory of static files to serve")
	if err := parse(fs, args); err != nil {
		return err
	}

	st, err := store.New(e.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if *static != "" {
		e.logger.Info("serving static files", zap.String("dir", *static))
	}
	srv := server.New(server.Config{StaticDir: *static, Store: st, Logger: e.logger})
	return srv.ListenAndServe(ctx, *addr)
}

func newSpeechClient(e *env) (*speech.Client, error) {
	sc := e.cfg.Speech
	if !sc.Enabled() {
		return nil, fmt.Errorf("%w: set SPEECH_KEY and SPEECH_REGION", speech.ErrNotConfigured)
	}

	player, err := speech.NewExecPlayer(sc.Player, 0)
	if err != nil {
		return nil, err
	}

	outDir, err := os.Getwd()
	if err != nil {
		outDir = "."
	}

	return speech.NewClient(speech.Config{
		Key:       sc.Key,
		Region:    sc.Region,
		Voice:     sc.Voice,
		Language:  sc.Language,
		OutputDir: outDir,
	}, player, e.logger)
}

// dashboardURL turns a listen address into a URL a local browser can open.
func dashboardURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// findWebDir looks for a web directory next to the working directory or in
// ~/.handsign/web. It returns "" when none exists.
func findWebDir() string {
	candidates := []string{"web", filepath.Join("..", "web")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".handsign", "web"))
	}

	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
