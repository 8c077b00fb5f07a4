package ui

// RenderRoomPanel wraps room content with a styled border. The border turns
// amber while zones are being edited.
func RenderRoomPanel(width, height int, roomContent, legend string, editMode bool) string {
	content := roomContent + "\n" + legend
	style := StylePanelBorder
	if editMode {
		style = StylePanelEdit
	}
	return style.Width(width - 2).Height(height - 2).Render(content)
}
