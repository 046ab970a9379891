package tui

import (
	"fmt"
	"strings"
	"time"
)

// View renders the dashboard: accent header, feed/status/controls block,
// error banner, bordered event log, footer hints.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderFeedLine())
	b.WriteByte('\n')
	b.WriteString(m.renderStatusLine())
	b.WriteByte('\n')
	b.WriteString(m.renderControls())
	b.WriteByte('\n')
	b.WriteString(m.renderBanner())
	b.WriteByte('\n')
	b.WriteString(m.theme.LogBorderStyle().Render(m.events.View()))
	b.WriteByte('\n')
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	parts := []string{
		"👁 detwatch",
		"server: " + m.client.BaseURL(),
	}
	if elapsed := m.now.Sub(m.startedAt); elapsed > 0 {
		parts = append(parts, "elapsed: "+formatElapsed(elapsed))
	}
	if !m.now.IsZero() {
		parts = append(parts, m.now.Format("15:04"))
	}
	return m.theme.HeaderStyle().Width(m.width).Render(strings.Join(parts, "  │  "))
}

func (m Model) renderFeedLine() string {
	if !m.feedUp {
		return "Feed:   " + errStyle.Render("○ down")
	}

	age := "—"
	if !m.lastFrameAt.IsZero() {
		age = fmt.Sprintf("%.1fs ago", m.now.Sub(m.lastFrameAt).Seconds())
	}
	return "Feed:   " + okStyle.Render("● live") +
		dimStyle.Render(fmt.Sprintf("  %d frames  %s  last frame %s",
			m.frames, formatBytes(m.feedBytes), age))
}

func (m Model) renderStatusLine() string {
	switch m.state {
	case StateRunning:
		return runningStyle.Render(statusRunningText)
	case StateStopped:
		return stoppedStyle.Render(statusStoppedText)
	default:
		return dimStyle.Render(statusUnknownText)
	}
}

// renderControls shows the start/stop keys; exactly one is enabled at any
// time once the state is known, matching the running flag.
func (m Model) renderControls() string {
	start := keyEnabledStyle.Render("[s] start")
	stop := keyDisabledStyle.Render("[x] stop")
	if m.state == StateRunning {
		start = keyDisabledStyle.Render("[s] start")
		stop = keyEnabledStyle.Render("[x] stop")
	}
	extra := dimStyle.Render("  [t] voice test  [r] reload feed")
	return start + "  " + stop + extra
}

func (m Model) renderBanner() string {
	if m.banner == "" {
		return ""
	}
	return bannerStyle.Render("⚠ " + m.banner)
}

func (m Model) renderFooter() string {
	left := m.renderStatusWord()
	right := "f:follow  j/k:scroll  q:quit"

	gap := m.width - len(left) - len(right)
	if gap < 2 {
		gap = 2
	}
	return footerStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// renderStatusWord is the compact footer state indicator.
func (m Model) renderStatusWord() string {
	switch m.state {
	case StateRunning:
		return "detection: running"
	case StateStopped:
		return "detection: stopped"
	default:
		return "detection: unknown"
	}
}

// logDims returns event log dimensions for a terminal of w×h: the log fills
// the space left by the header, the four info lines, the footer, and its
// own border.
func logDims(w, h int) (int, int) {
	lw := w - 2
	if lw < 1 {
		lw = 1
	}
	lh := h - 8
	if lh < 3 {
		lh = 3
	}
	return lw, lh
}

// formatElapsed renders a duration as a compact string: "5s", "2m30s", "1h15m".
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	mi := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, mi)
	}
	if mi > 0 {
		return fmt.Sprintf("%dm%ds", mi, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
