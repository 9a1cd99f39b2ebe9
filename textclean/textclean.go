// Package textclean turns assistant markdown into prose a speech
// synthesizer can read, and splits it into sentence groups for paced
// playback.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	CodeBlockMarker = " code block omitted "
	LinkMarker      = " link "
	MoreSuffix      = "... and more."

	// ClipboardLimit caps how much clipboard text is spoken, in runes.
	ClipboardLimit = 2000
	// DefaultChunkSentences is the sentence count per playback chunk.
	DefaultChunkSentences = 2
)

var (
	codeFenceRe  = regexp.MustCompile("```[\\s\\S]*?```")
	markdownRe   = regexp.MustCompile("[#*`_\\[\\]]")
	urlRe        = regexp.MustCompile(`https?://\S+`)
	newlineRunRe = regexp.MustCompile(`\n+`)
)

// Normalize rewrites text for speech. Fenced code must be replaced before
// markdown punctuation is stripped, otherwise the fences themselves are
// removed and the code is read aloud.
func Normalize(text string) string {
	text = codeFenceRe.ReplaceAllString(text, CodeBlockMarker)
	text = markdownRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, LinkMarker)
	text = newlineRunRe.ReplaceAllString(text, ". ")
	return strings.TrimSpace(text)
}

// Truncate cuts text to limit runes and appends MoreSuffix. The bool
// reports whether anything was cut.
func Truncate(text string, limit int) (string, bool) {
	if utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:limit]) + MoreSuffix, true
}

// Sentences splits text after '.', '!' or '?' when the mark directly
// follows a non-space character and is followed by whitespace. A lone
// mark such as the ". " left by newline collapsing does not end a
// sentence: "see  link . bye" stays one sentence, "Hi! bye" is two.
func Sentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) || i == 0 || unicode.IsSpace(runes[i-1]) {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// Split groups sentences into chunks of perChunk, joined by one space.
func Split(text string, perChunk int) []string {
	if perChunk <= 0 {
		perChunk = DefaultChunkSentences
	}
	sentences := Sentences(text)
	chunks := make([]string, 0, (len(sentences)+perChunk-1)/perChunk)
	for i := 0; i < len(sentences); i += perChunk {
		end := min(i+perChunk, len(sentences))
		chunks = append(chunks, strings.Join(sentences[i:end], " "))
	}
	return chunks
}
