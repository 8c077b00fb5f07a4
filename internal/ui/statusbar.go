package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	Connected bool
	FeedUp    bool
	Frame     int // feed spinner frame
	Zones     int
	MaxZones  int
	Targets   int // visible targets
	LastPush  time.Duration
	P95Push   time.Duration // 0 until enough samples
	PushErr   bool
	Message   string
	Input     *AddressInput
}

var spinner = []string{"|", "/", "-", "\\"}

// RenderStatusBar renders the bottom status bar. While the address prompt is
// open it replaces the counters.
func RenderStatusBar(width int, s Status) string {
	if s.Input != nil && s.Input.Active {
		content := StyleInputActive.Render(" Device IP: " + s.Input.Value + "_")
		content += StyleHelp.Render("   [Enter] connect  [Esc] cancel")
		return padBar(width, content)
	}

	status := StyleStatusOnline.Render("[ONLINE]")
	if !s.Connected {
		status = StyleStatusOffline.Render("[OFFLINE]")
	}

	feed := "feed: down"
	if s.FeedUp {
		feed = "feed: " + spinner[s.Frame%len(spinner)]
	}

	push := "push: -"
	if s.LastPush > 0 {
		push = fmt.Sprintf("push: %dms", s.LastPush.Milliseconds())
		if s.P95Push > 0 {
			push += fmt.Sprintf(" p95 %dms", s.P95Push.Milliseconds())
		}
	}
	if s.PushErr {
		push = "push: failed"
	}

	info := fmt.Sprintf(" Zones: %d/%d  Targets: %d  %s  %s", s.Zones, s.MaxZones, s.Targets, feed, push)
	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)
	if s.Message != "" {
		content += "  " + StyleMessage.Render(s.Message)
	}
	return padBar(width, content)
}

func padBar(width int, content string) string {
	// Width includes the bar's horizontal padding.
	gap := width - 2 - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
