package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"voicechat/log"
	"voicechat/speech"
	"voicechat/textclean"
)

const previewRunes = 200

// readAloud speaks the clipboard. Every failure is reported on out and
// through the speaker; none of them is fatal.
func readAloud(ctx context.Context, read func() (string, error), sp speech.Speaker, out io.Writer) {
	text, err := read()
	if err != nil {
		log.Errorf("clipboard read: %v", err)
		fmt.Fprintf(out, "Could not read clipboard: %v\n", err)
		say(ctx, sp, "Could not read clipboard")
		return
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(out, "Clipboard is empty!")
		say(ctx, sp, "Clipboard is empty")
		return
	}

	text = textclean.Normalize(text)
	text, truncated := textclean.Truncate(text, textclean.ClipboardLimit)
	if truncated {
		fmt.Fprintln(out, "Text truncated (too long)")
	}

	fmt.Fprintf(out, "Speaking %d characters...\n", len([]rune(text)))
	fmt.Fprintln(out, strings.Repeat("-", 40))
	fmt.Fprintln(out, preview(text, previewRunes))
	fmt.Fprintln(out, strings.Repeat("-", 40))

	log.Infof("readclip chars=%d truncated=%v", len([]rune(text)), truncated)
	say(ctx, sp, text)
	fmt.Fprintln(out, "Done!")
}

func say(ctx context.Context, sp speech.Speaker, text string) {
	if err := sp.Say(ctx, text); err != nil {
		log.Warnf("speech: %v", err)
	}
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
