package components

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/baton-remote/baton/internal/remote"
	"github.com/baton-remote/baton/internal/tui/styles"
)

// DeviceEntry pairs a trusted device with its fingerprint.
type DeviceEntry struct {
	Fingerprint string
	Device      remote.TrustedDevice
}

// SortDevices flattens a fingerprint-keyed device map into a stable list.
func SortDevices(devices map[string]remote.TrustedDevice) []DeviceEntry {
	entries := make([]DeviceEntry, 0, len(devices))
	for fp, d := range devices {
		entries = append(entries, DeviceEntry{Fingerprint: fp, Device: d})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Device.Name < entries[j].Device.Name
	})
	return entries
}

// Devices displays the server's trusted devices.
type Devices struct {
	selected int
}

// NewDevices creates a new Devices component
func NewDevices() *Devices {
	return &Devices{selected: 0}
}

// SelectNext selects the next device
func (d *Devices) SelectNext(total int) {
	if d.selected < total-1 {
		d.selected++
	}
}

// SelectPrev selects the previous device
func (d *Devices) SelectPrev() {
	if d.selected > 0 {
		d.selected--
	}
}

// Selected returns the selected device index
func (d *Devices) Selected() int {
	return d.selected
}

// Render renders the devices panel
func (d *Devices) Render(devices []DeviceEntry, ownFingerprint string, width, height int, focused bool) string {
	title := styles.PanelTitle("Trusted Devices", focused)

	var content string
	if len(devices) == 0 {
		content = styles.Muted.Render("No trusted devices")
	} else {
		content = d.renderDevices(devices, ownFingerprint, width-4, height-4, focused)
	}

	panel := styles.Panel("", focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (d *Devices) renderDevices(devices []DeviceEntry, ownFingerprint string, width, maxLines int, focused bool) string {
	if d.selected >= len(devices) {
		d.selected = len(devices) - 1
	}
	if d.selected < 0 {
		d.selected = 0
	}

	lines := make([]string, 0, len(devices))

	for i, entry := range devices {
		selector := "  "
		if focused && i == d.selected {
			selector = "▸ "
		}

		// Mark the device this client registered as.
		marker := ""
		if entry.Fingerprint == ownFingerprint {
			marker = styles.Playing.Render(" ●")
		}

		name := Truncate(entry.Device.Name, width-10)
		if i == d.selected && focused {
			name = styles.Highlight.Render(name)
		}

		line := fmt.Sprintf("%s📱 %s%s", selector, name, marker)
		lines = append(lines, line)

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
