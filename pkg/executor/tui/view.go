package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/vanish/pkg/experiment"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	sections := []string{
		m.buildHeader(),
		m.buildPhase(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, m.buildObjects(), " ", m.buildTally()),
		m.buildControls(),
		m.buildToast(),
		m.buildActivity(),
		m.buildStatusBar(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) buildHeader() string {
	s := m.session()
	title := headerStyle.Render("vanish") + " " + valueStyle.Render(s.Variant().Name)
	if d := s.Variant().Description; d != "" {
		title += "\n" + tipsStyle.Render(strings.TrimSpace(d))
	}
	return title
}

// buildPhase renders phase, stage and whether the next anchor will fail
func (m *model) buildPhase() string {
	s := m.session()
	v := s.Variant()

	parts := []string{labelStyle.Render("phase ") + valueStyle.Render(s.Phase().String())}
	if s.Phase() != experiment.PhaseAwaitingAnchor {
		name := ""
		if spec, err := v.Stage(s.Stage()); err == nil {
			name = spec.Name
		}
		parts = append(parts, labelStyle.Render("stage ")+valueStyle.Render(fmt.Sprintf("%d/%d %s", s.Stage()+1, v.StageCount(), name)))
	}
	if m.anchorer.Armed() {
		parts = append(parts, errorStyle.Render("next anchor fails"))
	}
	return strings.Join(parts, tipsStyle.Render(" • "))
}

// buildObjects lists placed objects with their material and color
func (m *model) buildObjects() string {
	objs := m.scene.Objects()
	if len(objs) == 0 {
		return panelStyle.Render(hiddenStyle.Render("Nothing placed. Press p to place the objects."))
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Objects"))
	for i, o := range objs {
		b.WriteString("\n")
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(o.Color))).Render("■")
		line := fmt.Sprintf("%d %s %-10s %-9s %s", i+1, swatch, o.Label, o.Role, materialText(o.Material))
		if o.LabelVisible {
			line += "  [" + o.Label + "]"
		}
		switch {
		case o.ID == m.lastHit:
			line = hitStyle.Render(line + "  ◀ hit")
		case !o.Material.Selectable():
			line = hiddenStyle.Render(line)
		}
		b.WriteString(line)
	}
	return panelStyle.Render(b.String())
}

func (m *model) buildTally() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Click counts"))
	if len(m.tally) == 0 {
		b.WriteString("\n" + hiddenStyle.Render("none yet"))
	}
	for _, e := range m.tally {
		fmt.Fprintf(&b, "\n%s: %s", e.Label, valueStyle.Render(fmt.Sprint(e.Count)))
	}
	return panelStyle.Render(b.String())
}

// buildControls renders the buttons the current stage shows
func (m *model) buildControls() string {
	var buttons []string
	for _, c := range experiment.AllControls {
		if m.controls[c] {
			buttons = append(buttons, controlStyle.Render(strings.ToUpper(string(c[:1]))+string(c[1:])))
		}
	}
	if len(buttons) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, buttons...)
}

func (m *model) buildToast() string {
	if m.toast.message == "" || time.Now().After(m.toast.showUntil) {
		return ""
	}
	width := m.width - 4
	if width < 40 {
		width = 40
	}
	return panelStyle.Width(width).Render("💬 " + m.toast.message)
}

func (m *model) buildActivity() string {
	if len(m.activity) == 0 {
		return ""
	}
	lines := make([]string, len(m.activity))
	for i, a := range m.activity {
		lines[i] = tipsStyle.Render("· " + a)
	}
	return strings.Join(lines, "\n")
}

func (m *model) buildStatusBar() string {
	status := m.status
	if status == "" {
		status = "ready"
	}
	if m.statusErr {
		status = errorStyle.Render(status)
	}
	id := m.sessionID
	if len(id) > 8 {
		id = id[:8]
	}
	return statusBarStyle.Render(fmt.Sprintf("%s  %s", tipsStyle.Render("session "+id), status))
}

func hexColor(c uint32) string {
	return fmt.Sprintf("#%06x", c&0xffffff)
}

func materialText(mat experiment.Material) string {
	if !mat.Visible {
		return "hidden"
	}
	return fmt.Sprintf("opacity %.2f", mat.Opacity)
}
