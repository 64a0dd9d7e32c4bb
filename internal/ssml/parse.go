package ssml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Parse reads a document produced by Marshal. Phoneme elements are turned
// back into bracketed anchors in the segment text.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		doc     *Document
		seg     *Segment
		text    strings.Builder
		phoneme *Phoneme
		word    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse ssml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "speak":
				doc = &Document{}
				for _, a := range t.Attr {
					if a.Name.Local == "lang" && (a.Name.Space == xmlNamespace || a.Name.Space == "xml") {
						doc.Language = a.Value
					}
				}
			case "voice":
				if doc == nil {
					return nil, errors.New("parse ssml: voice outside speak")
				}
				seg = &Segment{}
				text.Reset()
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "name":
						seg.Voice = a.Value
					case "style":
						seg.Style = a.Value
					case "styledegree":
						seg.StyleDegree = a.Value
					case "role":
						seg.Role = a.Value
					case "rate":
						seg.Rate = a.Value
					}
				}
			case "phoneme":
				if seg == nil {
					return nil, errors.New("parse ssml: phoneme outside voice")
				}
				phoneme = &Phoneme{}
				word.Reset()
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "alphabet":
						phoneme.Alphabet = a.Value
					case "ph":
						phoneme.Ph = a.Value
					}
				}
			}

		case xml.CharData:
			switch {
			case phoneme != nil:
				word.Write(t)
			case seg != nil:
				text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "phoneme":
				if phoneme != nil {
					phoneme.Word = word.String()
					text.WriteString("[" + phoneme.Word + "]")
					seg.Phonemes = append(seg.Phonemes, *phoneme)
					phoneme = nil
				}
			case "voice":
				if seg != nil {
					seg.Text = text.String()
					doc.Segments = append(doc.Segments, *seg)
					if doc.VoiceName == "" {
						doc.VoiceName = seg.Voice
					}
					seg = nil
				}
			}
		}
	}

	if doc == nil {
		return nil, errors.New("parse ssml: no speak element")
	}
	return doc, nil
}
