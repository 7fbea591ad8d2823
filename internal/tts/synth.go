// ABOUTME: Speech metadata synthesis: text passthrough plus duration estimate.
// ABOUTME: Actual audio rendering is the client's job.

package tts

import "unicode/utf8"

// msPerChar is the rough speaking-time estimate per character.
const msPerChar = 50

// Audio is the speech metadata attached to every AI reply.
type Audio struct {
	Text     string `json:"text"`
	Format   string `json:"format"`
	Duration int    `json:"duration"` // estimated playback time in ms
}

// Synthesizer produces speech metadata for outbound AI text.
type Synthesizer struct{}

// New creates a Synthesizer.
func New() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize returns metadata for the given text. Format "text" signals
// that the client renders the speech itself.
func (s *Synthesizer) Synthesize(text string) Audio {
	return Audio{
		Text:     text,
		Format:   "text",
		Duration: utf8.RuneCountInString(text) * msPerChar,
	}
}
