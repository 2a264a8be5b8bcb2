package tui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagtile/internal/config"
)

var errNoChanges = errors.New("no changes to save")

var (
	overlayBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	overlayTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	overlayHint  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type savePhase int

const (
	saveHidden savePhase = iota
	savePreview
	saveResult
)

type diffKind int

const (
	diffRemoved diffKind = iota
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

func (d diffLine) render(width int) string {
	text := d.text
	if len(text) > width {
		text = text[:width]
	}
	if d.kind == diffAdded {
		return addedStyle.Render("+ " + text)
	}
	return removedStyle.Render("- " + text)
}

// SaveOverlay previews the changed config keys and writes the file on
// confirmation.
type SaveOverlay struct {
	phase     savePhase
	diffLines []diffLine
	scroll    int
	err       error
	reloaded  bool
}

func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show opens the preview, or a "no changes" result when the configs match.
func (s *SaveOverlay) Show(original, current *config.Config) {
	*s = SaveOverlay{diffLines: computeDiffLines(original, current), phase: savePreview}
	if len(s.diffLines) == 0 {
		s.phase = saveResult
		s.err = errNoChanges
	}
}

func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. The config is written
// to path, or the default location when path is empty, and a connected
// daemon is asked to reload it.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string, client daemonClient, connected bool) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}

	switch km.String() {
	case "esc", "n":
		s.phase = saveHidden
	case "up", "k":
		s.scroll = max(s.scroll-1, 0)
	case "down", "j":
		s.scroll = min(s.scroll+1, max(len(s.diffLines)-1, 0))
	case "enter", "y":
		if path == "" {
			s.err = cfg.Save()
		} else {
			s.err = cfg.SaveTo(path)
		}
		if s.err == nil && connected && client != nil {
			s.reloaded = client.Reload() == nil
		}
		s.phase = saveResult
	}
	return s
}

// View renders the overlay centered in a width x height area.
func (s SaveOverlay) View(width, height int) string {
	var body string
	boxW := min(max(width-8, 30), 80)
	switch s.phase {
	case savePreview:
		rows := max(height-10, 3)
		start := min(s.scroll, max(len(s.diffLines)-rows, 0))
		end := min(start+rows, len(s.diffLines))
		textW := max(boxW-8, 8)

		lines := make([]string, 0, end-start)
		for _, dl := range s.diffLines[start:end] {
			lines = append(lines, dl.render(textW))
		}
		body = overlayTitle.Render(fmt.Sprintf("Save Config: %d pending changes", len(s.diffLines))) +
			"\n\n" + strings.Join(lines, "\n") +
			"\n\n" + overlayHint.Render("enter/y: save  esc/n: cancel  j/k: scroll")
	case saveResult:
		boxW = min(boxW, 60)
		switch {
		case s.err != nil:
			body = removedStyle.Bold(true).Render("Error: " + s.err.Error())
		case s.reloaded:
			body = addedStyle.Bold(true).Render("Config saved, daemon reloaded")
		default:
			body = addedStyle.Bold(true).Render("Config saved")
		}
		body += "\n\n" + overlayHint.Render("press any key to dismiss")
	default:
		return ""
	}
	box := overlayBorder.Width(boxW).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// computeDiffLines lists every config key whose value differs, old value
// first, in key order. Nil means nothing changed.
func computeDiffLines(original, current *config.Config) []diffLine {
	before, ok := flattenConfig(original)
	if !ok {
		return nil
	}
	after, ok := flattenConfig(current)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(before)+len(after))
	for k := range before {
		keys = append(keys, k)
	}
	for k := range after {
		if _, ok := before[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var lines []diffLine
	for _, k := range keys {
		old, hadOld := before[k]
		now, hasNow := after[k]
		if hadOld && hasNow && old == now {
			continue
		}
		if hadOld {
			lines = append(lines, diffLine{kind: diffRemoved, text: k + ": " + old})
		}
		if hasNow {
			lines = append(lines, diffLine{kind: diffAdded, text: k + ": " + now})
		}
	}
	return lines
}

// flattenConfig renders cfg as dotted keys mapped to scalar values, the
// same keys `tagtile config explain` accepts. List entries use their index.
func flattenConfig(cfg *config.Config) (map[string]string, bool) {
	if cfg == nil {
		return nil, false
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, false
	}
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, false
	}
	out := make(map[string]string)
	flattenValue("", tree, out)
	return out, true
}

func flattenValue(prefix string, v any, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenValue(join(k), child, out)
		}
	case []any:
		if len(val) == 0 {
			out[prefix] = "[]"
		}
		for i, child := range val {
			flattenValue(join(strconv.Itoa(i)), child, out)
		}
	case nil:
		out[prefix] = "null"
	default:
		out[prefix] = fmt.Sprint(val)
	}
}

// cloneConfig deep-copies cfg through YAML.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil
	}
	var clone config.Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		return nil
	}
	return &clone
}
