package ssml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Marshal validates the document and renders it as SSML.
func (d *Document) Marshal() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString("<speak")
	writeAttr(&b, "version", Version)
	writeAttr(&b, "xmlns", Namespace)
	writeAttr(&b, "xmlns:mstts", MSTTSNamespace)
	writeAttr(&b, "xml:lang", d.Language)
	b.WriteString(">")

	for _, seg := range d.Segments {
		if err := d.writeSegment(&b, seg); err != nil {
			return nil, err
		}
	}

	b.WriteString("</speak>")
	return b.Bytes(), nil
}

// String renders the document, or returns an empty string if it is invalid.
func (d *Document) String() string {
	out, err := d.Marshal()
	if err != nil {
		return ""
	}
	return string(out)
}

func (d *Document) writeSegment(b *bytes.Buffer, seg Segment) error {
	pieces, err := splitPhonemes(seg.Text, seg.Phonemes)
	if err != nil {
		return err
	}

	voice := seg.Voice
	if voice == "" {
		voice = d.VoiceName
	}

	b.WriteString("<voice")
	writeAttr(b, "name", voice)
	writeAttr(b, "style", seg.Style)
	writeAttr(b, "styledegree", seg.StyleDegree)
	writeAttr(b, "role", seg.Role)
	writeAttr(b, "rate", seg.Rate)
	b.WriteString(">")

	if len(seg.Phonemes) == 0 {
		b.WriteString(escape(seg.Text))
	} else {
		var inner strings.Builder
		for _, p := range pieces {
			inner.WriteString("<s>" + escape(p.text) + "</s>")
			if p.phoneme != nil {
				inner.WriteString("<phoneme")
				writeAttr(&inner, "alphabet", p.phoneme.Alphabet)
				writeAttr(&inner, "ph", p.phoneme.Ph)
				inner.WriteString(">" + escape(p.phoneme.Word) + "</phoneme>")
			}
		}
		b.WriteString(collapseSentences(inner.String()))
	}

	b.WriteString("</voice>")
	return nil
}

// collapseSentences keeps a single <s> around a voice's content. Splitting at
// phoneme anchors leaves one <s> per text run; the runs belong to the same
// sentence, so only the outermost pair is kept.
func collapseSentences(inner string) string {
	start := strings.Index(inner, "<s>")
	end := strings.LastIndex(inner, "</s>")
	if start < 0 || end < start {
		return inner
	}

	body := inner[start+len("<s>") : end]
	body = strings.ReplaceAll(body, "<s>", "")
	body = strings.ReplaceAll(body, "</s>", "")

	return inner[:start] + "<s>" + body + "</s>" + inner[end+len("</s>"):]
}

type stringWriter interface {
	WriteString(string) (int, error)
}

// writeAttr writes ` name="value"`, skipping empty values.
func writeAttr(w stringWriter, name, value string) {
	if value == "" {
		return
	}
	w.WriteString(fmt.Sprintf(` %s="%s"`, name, escape(value)))
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
