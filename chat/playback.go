package chat

import (
	"context"
	"fmt"
	"strings"

	"voicechat/log"
)

const (
	playCompleted = "completed"
	playSkipped   = "skipped"
	playStopped   = "stopped"
)

// play speaks chunks in order, asking between chunks whether to go on.
// The last chunk is never followed by a prompt.
func (l *Loop) play(ctx context.Context, chunks []string) string {
	outcome := playCompleted
	spoken := 0
	total := len(chunks)
	l.drainInterrupts()

loop:
	for i, chunk := range chunks {
		l.say(ctx, chunk)
		spoken++
		if i == total-1 {
			break
		}

		answer, err := l.In.ReadLine(fmt.Sprintf("\n[%d/%d] ENTER=continue, s=skip, r=repeat: ", i+1, total))
		if err != nil {
			l.say(ctx, "Stopped.")
			outcome = playStopped
			break
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "s":
			l.say(ctx, "Skipping rest.")
			outcome = playSkipped
			break loop
		case "r":
			l.say(ctx, chunk)
			if _, err := l.In.ReadLine(fmt.Sprintf("[%d/%d] ENTER=continue: ", i+1, total)); err != nil {
				l.say(ctx, "Stopped.")
				outcome = playStopped
				break loop
			}
		}
	}

	l.printf("Done reading.\n")
	log.Playback(total, spoken, outcome)
	return outcome
}
