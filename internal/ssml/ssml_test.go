package ssml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	d := New()
	assert.Equal(t, LangEnUS, d.Language)
	assert.Equal(t, VoiceEnUSJennyMultilingual, d.VoiceName)

	d = New(WithLanguage(LangDeDE), WithVoice(VoiceDeDEKatja), WithVoice(""))
	assert.Equal(t, LangDeDE, d.Language)
	assert.Equal(t, VoiceDeDEKatja, d.VoiceName)
}

func TestMarshal_PlainText(t *testing.T) {
	d := New()
	d.AddText("Rock beats scissors & paper beats rock.")

	out, err := d.Marshal()
	require.NoError(t, err)

	want := `<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" ` +
		`xmlns:mstts="https://www.w3.org/2001/mstts" xml:lang="en-US">` +
		`<voice name="en-US-JennyMultilingualNeural">Rock beats scissors &amp; paper beats rock.</voice>` +
		`</speak>`
	assert.Equal(t, want, string(out))
}

func TestMarshal_SegmentAttributes(t *testing.T) {
	d := New()
	require.NoError(t, d.AddSegment(Segment{
		Text:        "Good game.",
		Voice:       VoiceZhCNXiaoxiao,
		Style:       StyleCheerful,
		StyleDegree: "2",
		Role:        RoleGirl,
		Rate:        RateSlow,
	}))

	out := d.String()
	assert.Contains(t, out, `<voice name="zh-CN-XiaoxiaoNeural" style="cheerful" styledegree="2" role="Girl" rate="slow">Good game.</voice>`)
}

func TestMarshal_PhonemesCollapseSentences(t *testing.T) {
	d := New()
	require.NoError(t, d.AddSegment(Segment{
		Text: "Say [tomato] and [potato] twice.",
		Phonemes: []Phoneme{
			{Word: "tomato", Ph: "t ax m ey t ow"},
			{Word: "potato", Alphabet: "ipa", Ph: "pəˈteɪtoʊ"},
		},
	}))

	out := d.String()
	want := `<voice name="en-US-JennyMultilingualNeural"><s>Say ` +
		`<phoneme alphabet="sapi" ph="t ax m ey t ow">tomato</phoneme> and ` +
		`<phoneme alphabet="ipa" ph="pəˈteɪtoʊ">potato</phoneme> twice.</s></voice>`
	assert.Contains(t, out, want)
	assert.Equal(t, 1, strings.Count(out, "<s>"))
	assert.Equal(t, 1, strings.Count(out, "</s>"))
}

func TestAddSegment_InvalidAnchor(t *testing.T) {
	d := New()

	err := d.AddSegment(Segment{
		Text:     "this is a test",
		Phonemes: []Phoneme{{Word: "test", Ph: "t eh s t"}},
	})
	assert.ErrorIs(t, err, ErrInvalidPhonemeAnchor)
	assert.Empty(t, d.Segments, "invalid segments are not added")

	err = d.AddSegment(Segment{
		Text:     "this is a [test]",
		Phonemes: []Phoneme{{Word: "test", Ph: "t eh s t"}},
	})
	assert.NoError(t, err)
}

func TestAddSegment_AnchorsConsumedInOrder(t *testing.T) {
	d := New()

	err := d.AddSegment(Segment{
		Text: "[b] then [a]",
		Phonemes: []Phoneme{
			{Word: "a", Ph: "ey"},
			{Word: "b", Ph: "b iy"},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidPhonemeAnchor)
}

func TestAddSegment_MissingPhonemeFields(t *testing.T) {
	d := New()

	err := d.AddSegment(Segment{Text: "[x]", Phonemes: []Phoneme{{Word: "x"}}})
	assert.ErrorIs(t, err, ErrMissingPhoneme)

	err = d.AddSegment(Segment{Text: "[x]", Phonemes: []Phoneme{{Ph: "eh k s"}}})
	assert.ErrorIs(t, err, ErrMissingPhoneme)
}

func TestValidate_Language(t *testing.T) {
	d := New(WithLanguage("not a language"))
	d.AddText("hello")

	_, err := d.Marshal()
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.Empty(t, d.String())
}

func TestValidate_SegmentsAddedDirectly(t *testing.T) {
	d := New()
	d.Segments = append(d.Segments, Segment{Text: "no anchor", Phonemes: []Phoneme{{Word: "w", Ph: "p"}}})

	assert.ErrorIs(t, d.Validate(), ErrInvalidPhonemeAnchor)
}

func TestParse_RoundTrip(t *testing.T) {
	d := New(WithLanguage(LangFrFR), WithVoice(VoiceFrFRDenise))
	d.AddText("Pierre, feuille, ciseaux <go>")

	out, err := d.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(out)
	require.NoError(t, err)

	assert.Equal(t, LangFrFR, parsed.Language)
	assert.Equal(t, VoiceFrFRDenise, parsed.VoiceName)
	require.Len(t, parsed.Segments, 1)
	assert.Equal(t, "Pierre, feuille, ciseaux <go>", parsed.Segments[0].Text)
	assert.Equal(t, VoiceFrFRDenise, parsed.Segments[0].Voice)
}

func TestParse_RoundTripPhonemes(t *testing.T) {
	d := New()
	seg := Segment{
		Text:  "I say [tomato] you say [tomato].",
		Style: StyleChat,
		Phonemes: []Phoneme{
			{Word: "tomato", Alphabet: "sapi", Ph: "t ax m ey t ow"},
			{Word: "tomato", Alphabet: "sapi", Ph: "t ax m aa t ow"},
		},
	}
	require.NoError(t, d.AddSegment(seg))

	parsed, err := Parse([]byte(d.String()))
	require.NoError(t, err)
	require.Len(t, parsed.Segments, 1)

	got := parsed.Segments[0]
	assert.Equal(t, seg.Text, got.Text)
	assert.Equal(t, seg.Style, got.Style)
	assert.Equal(t, seg.Phonemes, got.Phonemes)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`<voice name="x">hi</voice>`))
	assert.Error(t, err)

	_, err = Parse([]byte(`<speak><voice>`))
	assert.Error(t, err)

	_, err = Parse([]byte(``))
	assert.Error(t, err)
}

func TestCollapseSentences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"<s>a</s>", "<s>a</s>"},
		{"<s>a</s><p>x</p><s>b</s>", "<s>a<p>x</p>b</s>"},
		{"<s></s><p>x</p><s></s><p>y</p><s>z</s>", "<s><p>x</p><p>y</p>z</s>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collapseSentences(tt.in), tt.in)
	}
}

func TestVoicesFor(t *testing.T) {
	voices := VoicesFor(LangEnUS)
	require.NotEmpty(t, voices)
	for _, v := range voices {
		assert.Equal(t, LangEnUS, v.Language)
	}
	assert.Empty(t, VoicesFor("xx-XX"))
}
