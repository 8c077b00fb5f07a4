package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"zone-radar.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, device string, editMode bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"E", "dit"},
		{"N", "ew"},
		{"D", "elete"},
		{"R", "eset"},
		{"I", "P"},
		{"C", "onnect"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	mode := StyleStatusOnline.Render("VIEW")
	if editMode {
		mode = StyleStatusEdit.Render("EDIT")
	}

	if device == "" {
		device = "-"
	}
	deviceInfo := StyleMenuLabel.Render(fmt.Sprintf("Device: %s", device))

	left := StyleMenuKey.Render(title) + menu
	right := mode + "  " + deviceInfo + " "

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
