// Package speech synthesizes speech through the cloud text-to-speech REST
// service and plays or saves the resulting audio.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/handsign/internal/ssml"
)

const (
	// DefaultOutputFormat is a format every player understands.
	DefaultOutputFormat = "audio-24khz-48kbitrate-mono-mp3"
	// DefaultTimeout bounds a single synthesis request.
	DefaultTimeout = 30 * time.Second

	endpointTemplate = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"
	userAgent        = "handsign"
)

var (
	// ErrNotConfigured is returned by NewClient without a key or region.
	ErrNotConfigured = errors.New("speech: key and region are required")
	// ErrNoPlayer is returned by Speak when the client has no player.
	ErrNoPlayer = errors.New("speech: no audio player")
)

// Config holds the credentials and defaults of a Client.
type Config struct {
	Key          string
	Region       string
	Voice        string
	Language     string
	OutputFormat string
	// Endpoint overrides the region endpoint.
	Endpoint string
	// OutputDir is where Save writes files when no path is given.
	OutputDir string
	Timeout   time.Duration
}

// Input is the text to synthesize: either plain text or an SSML document.
type Input struct {
	text string
	doc  *ssml.Document
}

// Text returns an Input of plain text, spoken in the client's voice.
func Text(s string) Input {
	return Input{text: s}
}

// Markup returns an Input of a prepared SSML document.
func Markup(doc *ssml.Document) Input {
	return Input{doc: doc}
}

// IsMarkup reports whether the input is an SSML document.
func (in Input) IsMarkup() bool {
	return in.doc != nil
}

// String returns the plain text, or the rendered document for markup.
func (in Input) String() string {
	if in.doc != nil {
		return in.doc.String()
	}
	return in.text
}

type callOptions struct {
	voice    string
	language string
	style    string
	rate     string
}

// Option adjusts a single Speak or Save call.
type Option func(*callOptions)

// WithVoice switches the client's voice. The change persists for later calls.
func WithVoice(name string) Option {
	return func(o *callOptions) { o.voice = name }
}

// WithLanguage switches the client's language. The change persists for later calls.
func WithLanguage(lang string) Option {
	return func(o *callOptions) { o.language = lang }
}

// WithStyle sets a speaking style for plain text input.
func WithStyle(style string) Option {
	return func(o *callOptions) { o.style = style }
}

// WithRate sets a speaking rate for plain text input.
func WithRate(rate string) Option {
	return func(o *callOptions) { o.rate = rate }
}

// Result describes a finished synthesis.
type Result struct {
	Completed    bool                 `json:"completed"`
	AudioLength  int                  `json:"audio_length"`
	Path         string               `json:"path,omitempty"`
	Cancellation *CancellationDetails `json:"cancellation,omitempty"`
}

// Client synthesizes speech. It is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	player Player
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	voice    string
	language string
}

// NewClient creates a client. player may be nil when only Save is used.
func NewClient(cfg Config, player Player, logger *zap.Logger) (*Client, error) {
	if cfg.Key == "" || (cfg.Region == "" && cfg.Endpoint == "") {
		return nil, ErrNotConfigured
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = fmt.Sprintf(endpointTemplate, cfg.Region)
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
	if cfg.Voice == "" {
		cfg.Voice = ssml.DefaultVoice
	}
	if cfg.Language == "" {
		cfg.Language = ssml.DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		player:   player,
		logger:   logger,
		now:      time.Now,
		voice:    cfg.Voice,
		language: cfg.Language,
	}, nil
}

// Voice returns the current voice.
func (c *Client) Voice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// Language returns the current language.
func (c *Client) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// Speak synthesizes the input and plays it through the client's player.
// On a synthesis failure the returned Result carries the cancellation details
// alongside the error.
func (c *Client) Speak(ctx context.Context, in Input, opts ...Option) (*Result, error) {
	if c.player == nil {
		return nil, ErrNoPlayer
	}

	audio, result, err := c.synthesize(ctx, in, opts)
	if err != nil {
		return result, err
	}

	if err := c.player.Play(ctx, audio); err != nil {
		return result, fmt.Errorf("play audio: %w", err)
	}
	return result, nil
}

// Save synthesizes the input and writes the audio to path. An empty path
// names the file after the current time in milliseconds.
func (c *Client) Save(ctx context.Context, in Input, path string, opts ...Option) (*Result, error) {
	if path == "" {
		path = filepath.Join(c.cfg.OutputDir, fmt.Sprintf("%d.mp3", c.now().UnixMilli()))
	}

	audio, result, err := c.synthesize(ctx, in, opts)
	if err != nil {
		return result, err
	}

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return result, fmt.Errorf("write audio: %w", err)
	}
	result.Path = path

	c.logger.Info("speech saved", zap.String("path", path), zap.Int("bytes", len(audio)))
	return result, nil
}

func (c *Client) synthesize(ctx context.Context, in Input, opts []Option) ([]byte, *Result, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	voice, lang := c.apply(o)

	doc, err := c.document(in, voice, lang, o)
	if err != nil {
		return nil, nil, err
	}
	body, err := doc.Marshal()
	if err != nil {
		return nil, nil, fmt.Errorf("build ssml: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.cfg.OutputFormat)
	req.Header.Set("User-Agent", userAgent)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		details := CancellationDetails{Reason: ReasonError, ErrorCode: CodeConnectionFailure, ErrorDetails: err.Error()}
		if ctx.Err() != nil {
			details = CancellationDetails{Reason: ReasonCancelledByUser, ErrorDetails: ctx.Err().Error()}
		}
		return nil, failed(details), &SynthesisError{Details: details}
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		details := CancellationDetails{Reason: ReasonError, ErrorCode: CodeConnectionFailure, ErrorDetails: err.Error()}
		return nil, failed(details), &SynthesisError{Details: details}
	}

	if resp.StatusCode != http.StatusOK {
		details := CancellationDetails{
			Reason:       ReasonError,
			ErrorCode:    codeForStatus(resp.StatusCode),
			ErrorDetails: strings.TrimSpace(fmt.Sprintf("%s %s", resp.Status, audio)),
		}
		c.logger.Warn("speech synthesis canceled",
			zap.String("reason", details.Reason),
			zap.String("code", details.ErrorCode),
			zap.Int("status", resp.StatusCode))
		return nil, failed(details), &SynthesisError{Details: details}
	}

	c.logger.Debug("speech synthesized",
		zap.String("voice", voice),
		zap.Int("bytes", len(audio)),
		zap.Duration("took", c.now().Sub(start)))

	return audio, &Result{Completed: true, AudioLength: len(audio)}, nil
}

// apply stores voice and language overrides and returns the values in effect.
func (c *Client) apply(o callOptions) (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o.voice != "" {
		c.voice = o.voice
	}
	if o.language != "" {
		c.language = o.language
	}
	return c.voice, c.language
}

func (c *Client) document(in Input, voice, lang string, o callOptions) (*ssml.Document, error) {
	if in.doc != nil {
		return in.doc, nil
	}
	if strings.TrimSpace(in.text) == "" {
		return nil, errors.New("speech: empty text")
	}

	doc := ssml.New(ssml.WithLanguage(lang), ssml.WithVoice(voice))
	if err := doc.AddSegment(ssml.Segment{Text: in.text, Style: o.style, Rate: o.rate}); err != nil {
		return nil, err
	}
	return doc, nil
}

func failed(details CancellationDetails) *Result {
	return &Result{Cancellation: &details}
}
