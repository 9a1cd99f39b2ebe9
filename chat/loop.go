// Package chat runs the interactive voice session: read a command,
// capture an utterance, dispatch it to the assistant and play the reply
// back in chunks.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"voicechat/assistant"
	"voicechat/log"
	"voicechat/speech"
	"voicechat/textclean"
	"voicechat/transcriber"
)

const (
	idlePrompt   = "\n[ENTER=voice, t=text, s=session, q=quit]: "
	typedPrompt  = "Type your message: "
	sendingLimit = 50
)

// Recorder captures one utterance. A nil slice means nothing was heard.
type Recorder interface {
	Record(ctx context.Context) ([]int16, error)
}

// State is the only thing that survives between turns.
type State struct {
	SessionID  string
	Continuing bool
}

type Loop struct {
	In             Input
	Out            io.Writer
	Speaker        speech.Speaker
	Recorder       Recorder
	Transcriber    transcriber.Transcriber
	Assistant      assistant.Client
	Workspace      string
	ChunkSentences int

	State State
	turns int
}

// Turns is the number of completed dispatches.
func (l *Loop) Turns() int { return l.turns }

func (l *Loop) say(ctx context.Context, text string) {
	if err := l.Speaker.Say(ctx, text); err != nil {
		log.Warnf("speech: %v", err)
	}
}

func (l *Loop) printf(format string, args ...any) {
	fmt.Fprintf(l.Out, format, args...)
}

// Banner prints the header and the command list.
func (l *Loop) Banner() {
	l.printf("%s\n%s\n%s\n", rule, titleStyle.Render("VOICE ASSISTANT"), rule)
	l.printf("\nWorkspace: %s\n", l.Workspace)
	if l.State.Continuing {
		l.printf("Continuing previous session\n")
	}
	l.printf("\nCommands:\n")
	l.printf("  ENTER = Record voice message\n")
	l.printf("  t     = Type text message\n")
	l.printf("  s     = Show session ID\n")
	l.printf("  q     = Quit\n")
}

// Run drives the loop until the user quits. Interrupt or end of input
// at the idle prompt counts as quitting.
func (l *Loop) Run(ctx context.Context) error {
	if l.State.Continuing && l.State.SessionID == "" {
		if id, ok := l.Assistant.LatestSession(ctx); ok {
			l.State.SessionID = id
			l.printf("Session ID: %s...\n", assistant.ShortID(id))
		}
	}

	l.say(ctx, "Voice assistant ready.")

	for {
		l.drainInterrupts()
		line, err := l.In.ReadLine(idlePrompt)
		if err != nil {
			l.say(ctx, "Goodbye!")
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
				return nil
			}
			return err
		}

		kind, text := parseCommand(line)
		switch kind {
		case cmdQuit:
			l.say(ctx, "Goodbye!")
			return nil
		case cmdSession:
			l.showSession(ctx)
			continue
		case cmdText:
			if text == "" {
				text, err = l.In.ReadLine(typedPrompt)
				if err != nil {
					continue
				}
				text = strings.TrimSpace(text)
				if text == "" {
					l.printf("%s\n", noteStyle.Render("Empty message."))
					continue
				}
			}
		case cmdVoice:
			var ok bool
			if text, ok = l.listen(ctx); !ok {
				continue
			}
		}

		if text == "" {
			l.say(ctx, "Could not understand.")
			continue
		}
		l.dispatch(ctx, text)
	}
}

func (l *Loop) showSession(ctx context.Context) {
	id := l.State.SessionID
	if id == "" {
		id, _ = l.Assistant.LatestSession(ctx)
	}
	if id == "" {
		l.printf("No session yet.\n")
		return
	}
	l.printf("Session ID: %s\n", id)
	l.printf("   Use in auggie: auggie -r %s\n", assistant.ShortID(id))
}

// listen records and transcribes one utterance. ok is false when the
// turn is over already (nothing recorded or recording failed); an empty
// text with ok set means the transcript was blank.
func (l *Loop) listen(ctx context.Context) (string, bool) {
	l.printf("\nRECORDING... (Ctrl+C to stop)\n")
	pcm, err := l.Recorder.Record(ctx)
	if err != nil {
		log.Errorf("recording: %v", err)
		l.printf("%s\n", errStyle.Render("Recording failed: "+err.Error()))
		return "", false
	}
	l.printf("Stopped.\n")
	if len(pcm) == 0 {
		l.say(ctx, "No audio recorded.")
		return "", false
	}

	l.printf("Transcribing...\n")
	start := time.Now()
	result, err := transcriber.Transcribe(ctx, l.Transcriber, pcm)
	if err != nil {
		log.Errorf("transcription: %v", err)
		return "", true
	}
	var audioS float64
	if result.Batch != nil {
		audioS = result.Batch.AudioLengthS
	}
	log.Transcription(l.Transcriber.Name(), audioS, time.Since(start), len(result.Text))
	for _, m := range result.Metrics {
		log.Info(m)
	}
	return result.Text, true
}

func (l *Loop) dispatch(ctx context.Context, text string) {
	l.printf("\n%s\n", userStyle.Render(fmt.Sprintf("You: %q", text)))
	log.Turn("user", text)
	sending := "Sending: " + prefix(text, sendingLimit)
	l.printf("%s\n", sending)
	l.say(ctx, sending)

	req := assistant.NewRequest(text, l.Workspace, l.State.SessionID, l.State.Continuing)
	l.printf("\nSending to assistant...\n")
	res := l.Assistant.Run(ctx, req)
	reply := res.Text()

	l.printf("\n%s\n%s\n\n", replyStyle.Render("Assistant:"), reply)
	log.Turn("assistant", reply)

	chunks := textclean.Split(textclean.Normalize(reply), l.ChunkSentences)
	l.play(ctx, chunks)
	l.turns++

	if !res.OK {
		return
	}
	l.State.Continuing = true
	if l.State.SessionID == "" {
		if id, ok := l.Assistant.LatestSession(ctx); ok {
			l.State.SessionID = id
		}
	}
}

// drainer is implemented by inputs that queue interrupts between prompts.
type drainer interface {
	Drain()
}

func (l *Loop) drainInterrupts() {
	if d, ok := l.In.(drainer); ok {
		d.Drain()
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
