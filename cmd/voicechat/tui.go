package main

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const meterWidth = 24

type tickMsg time.Time

var (
	recStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// levelGauge hands the latest RMS level from the capture callback to the
// meter without blocking the audio thread.
type levelGauge struct{ bits atomic.Uint64 }

func (g *levelGauge) Set(level float64) { g.bits.Store(math.Float64bits(level)) }

func (g *levelGauge) Get() float64 { return math.Float64frombits(g.bits.Load()) }

// meterModel is the inline recording indicator shown while the
// microphone is open. Enter or Ctrl+C ends the recording.
type meterModel struct {
	gauge    *levelGauge
	device   string
	started  time.Time
	elapsed  time.Duration
	level    float64
	peak     float64
	finished bool
}

func newMeter(gauge *levelGauge, device string) meterModel {
	return meterModel{gauge: gauge, device: device, started: time.Now()}
}

func meterTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m meterModel) Init() tea.Cmd {
	return meterTick()
}

func (m meterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "enter", "esc", "q":
			m.finished = true
			return m, tea.Quit
		}

	case tickMsg:
		m.elapsed = time.Time(msg).Sub(m.started)
		m = m.observe(m.gauge.Get())
		return m, meterTick()
	}
	return m, nil
}

func (m meterModel) observe(level float64) meterModel {
	m.level = m.level*0.6 + level*0.4
	if level > m.peak {
		m.peak = level
	}
	return m
}

func (m meterModel) View() string {
	if m.finished {
		return ""
	}
	var b strings.Builder
	b.WriteString(recStyle.Render(fmt.Sprintf("● REC %.1fs", m.elapsed.Seconds())))
	b.WriteString("  ")
	b.WriteString(renderBar(m.level, meterWidth))
	if m.device != "" {
		b.WriteString(hintStyle.Render("  " + m.device))
	}
	b.WriteString("\n")
	if m.elapsed > time.Second && m.peak < 0.02 {
		b.WriteString(warnStyle.Render("  ⚠ no voice detected"))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("  ENTER or Ctrl+C to stop"))
	return b.String()
}

// renderBar draws level (0..1) as a bar of width cells. Speech RMS rarely
// passes 0.3, so the scale is stretched by a square root.
func renderBar(level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(math.Round(math.Sqrt(level) * float64(width)))
	return barStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}
