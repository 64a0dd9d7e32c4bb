// Package ssml builds and reads Speech Synthesis Markup Language documents
// for the cloud text-to-speech service.
//
// See https://learn.microsoft.com/azure/ai-services/speech-service/speech-synthesis-markup
package ssml

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Document attributes written on the root element.
const (
	Version        = "1.0"
	Namespace      = "http://www.w3.org/2001/10/synthesis"
	MSTTSNamespace = "https://www.w3.org/2001/mstts"

	DefaultLanguage = LangEnUS
	DefaultVoice    = VoiceEnUSJennyMultilingual
	DefaultAlphabet = "sapi"
)

var (
	// ErrInvalidPhonemeAnchor is returned when a phoneme's bracketed word
	// does not appear in the remaining segment text.
	ErrInvalidPhonemeAnchor = errors.New("phoneme anchor not found in text")
	// ErrMissingPhoneme is returned when a phoneme lacks its word or pronunciation.
	ErrMissingPhoneme = errors.New("phoneme missing word or ph")
	// ErrInvalidLanguage is returned for a document language that is not a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language tag")
)

// Phoneme overrides the pronunciation of one word in a segment. The word
// must appear in the segment text wrapped in square brackets, e.g. "[tomato]".
type Phoneme struct {
	Word     string `json:"word"`
	Alphabet string `json:"alphabet,omitempty"`
	Ph       string `json:"ph"`
}

// Segment is one <voice> element.
type Segment struct {
	Text        string    `json:"text"`
	Voice       string    `json:"voice,omitempty"`
	Style       string    `json:"style,omitempty"`
	StyleDegree string    `json:"style_degree,omitempty"`
	Role        string    `json:"role,omitempty"`
	Rate        string    `json:"rate,omitempty"`
	Phonemes    []Phoneme `json:"phonemes,omitempty"`
}

// Document is an SSML <speak> document.
type Document struct {
	Language  string    `json:"language"`
	VoiceName string    `json:"voice"`
	Segments  []Segment `json:"segments"`
}

// Option configures a new Document.
type Option func(*Document)

// WithLanguage sets the document language.
func WithLanguage(lang string) Option {
	return func(d *Document) {
		if lang != "" {
			d.Language = lang
		}
	}
}

// WithVoice sets the voice used by segments that do not name one.
func WithVoice(name string) Option {
	return func(d *Document) {
		if name != "" {
			d.VoiceName = name
		}
	}
}

// New creates an empty document in DefaultLanguage spoken by DefaultVoice.
func New(opts ...Option) *Document {
	d := &Document{
		Language:  DefaultLanguage,
		VoiceName: DefaultVoice,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddText appends a plain segment in the document voice.
func (d *Document) AddText(text string) {
	d.Segments = append(d.Segments, Segment{Text: text})
}

// AddSegment validates seg and appends it.
func (d *Document) AddSegment(seg Segment) error {
	if _, err := splitPhonemes(seg.Text, seg.Phonemes); err != nil {
		return err
	}
	d.Segments = append(d.Segments, seg)
	return nil
}

// Validate checks the language tag and every segment's phoneme anchors.
func (d *Document) Validate() error {
	if _, err := language.Parse(d.Language); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, d.Language)
	}
	for i, seg := range d.Segments {
		if _, err := splitPhonemes(seg.Text, seg.Phonemes); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// piece is a run of plain text optionally followed by a phoneme.
type piece struct {
	text    string
	phoneme *Phoneme
}

// splitPhonemes cuts text at each phoneme anchor in order. Each anchor is
// searched for in the text left after the previous one.
func splitPhonemes(text string, phonemes []Phoneme) ([]piece, error) {
	if len(phonemes) == 0 {
		return []piece{{text: text}}, nil
	}

	pieces := make([]piece, 0, len(phonemes)+1)
	rest := text
	for i := range phonemes {
		p := phonemes[i]
		if p.Word == "" || p.Ph == "" {
			return nil, fmt.Errorf("%w: phoneme %d", ErrMissingPhoneme, i)
		}
		if p.Alphabet == "" {
			p.Alphabet = DefaultAlphabet
		}

		anchor := "[" + p.Word + "]"
		before, after, found := strings.Cut(rest, anchor)
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPhonemeAnchor, anchor)
		}
		pieces = append(pieces, piece{text: before, phoneme: &p})
		rest = after
	}
	pieces = append(pieces, piece{text: rest})

	return pieces, nil
}
