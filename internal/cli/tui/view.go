package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	// Title bar
	sections = append(sections, m.renderTitleBar())

	// Error display
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Host and predictor state
	if m.status != nil {
		sections = append(sections, m.renderStatus())
	}

	// Dataset overview
	if m.stats != nil {
		sections = append(sections, m.renderDataset())

		if len(m.stats.Dataset.Distribution) > 0 {
			sections = append(sections, m.renderDistribution())
		}
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("OPTFOX DASHBOARD")

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh")

	// Calculate spacing
	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderStatus() string {
	var lines []string

	lines = append(lines, sectionHeaderStyle.Render("  Predictor"))

	strategy := m.status.Strategy
	modelState := "not trained"
	if m.status.Model.Exists {
		modelState = fmt.Sprintf("trained (%d bytes)", m.status.Model.Size)
	}
	lines = append(lines, fmt.Sprintf("  %s %s    %s %s",
		labelStyle.Render("Strategy:"), valueStyle.Render(strategy),
		labelStyle.Render("Model:"), valueStyle.Render(modelState)))

	cpuBar := m.renderLoadBar("Host CPU", m.status.CPUPercent, 20)
	lines = append(lines, fmt.Sprintf("  %s  %s", cpuBar,
		labelStyle.Render(fmt.Sprintf("(%d cores)", m.status.NumCPU))))

	memBar := m.renderLoadBar("Host mem", m.status.MemPercent, 20)
	lines = append(lines, fmt.Sprintf("  %s", memBar))

	return strings.Join(lines, "\n")
}

func (m Model) renderLoadBar(label string, percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	color := getLoadColor(percent)
	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := barEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s [%s%s] %5.1f%%", labelStyle.Render(label), filledBar, emptyBar, percent)
}

func (m Model) renderDataset() string {
	var lines []string

	ds := m.stats.Dataset

	lines = append(lines, sectionHeaderStyle.Render("  Dataset"))
	lines = append(lines, fmt.Sprintf("  %s %s    %s %s",
		labelStyle.Render("Programs:"), valueStyle.Render(fmt.Sprintf("%d", ds.TotalCodes)),
		labelStyle.Render("Cached results:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.Cached))))

	if ds.TotalCodes > 0 {
		lines = append(lines, fmt.Sprintf("  %s loops=%.1f calls=%.1f instrs=%.1f",
			labelStyle.Render("Averages:"), ds.AvgLoopCount, ds.AvgFuncCalls, ds.AvgInstrCount))
		lines = append(lines, fmt.Sprintf("  %s branches=%d memory=%d globals=%d",
			labelStyle.Render("Programs with:"), ds.WithBranches, ds.WithMemory, ds.WithGlobals))
	}

	return strings.Join(lines, "\n")
}

// renderDistribution draws one bar per tier, scaled to the largest
// bucket.
func (m Model) renderDistribution() string {
	var lines []string

	lines = append(lines, sectionHeaderStyle.Render("  Best tier distribution"))

	dist := m.stats.Dataset.Distribution

	tiers := make([]string, 0, len(dist))
	maxCount := 0
	for tier, count := range dist {
		tiers = append(tiers, tier)
		if count > maxCount {
			maxCount = count
		}
	}
	sort.Strings(tiers)

	const barWidth = 24
	for _, tier := range tiers {
		count := dist[tier]
		filled := 0
		if maxCount > 0 {
			filled = count * barWidth / maxCount
		}
		bar := barFillStyle.Render(strings.Repeat("█", filled)) +
			barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("  %-4s %s %d", tier, bar, count))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	if m.lastUpdated.IsZero() {
		return helpStyle.Render("  waiting for first update...")
	}
	return helpStyle.Render(fmt.Sprintf("  last updated %s", m.lastUpdated.Format("15:04:05")))
}
