package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"parceldash/internal/geo"
	"parceldash/internal/types"
)

var printer = message.NewPrinter(language.English)

var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
	Muted   lipgloss.Style
	Warn    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18),
	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1),
	Cell:    lipgloss.NewStyle().Padding(0, 1),
	Border:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	Success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1),
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("$%.0f", *v)
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// renderRecord draws the detail card of one record. localityLabel is the
// locality column of the active variant; zones may be nil.
func renderRecord(r *types.Record, localityLabel string, zones *geo.ZoneIndex) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(styles.Label.Render(label) + value + "\n")
	}

	b.WriteString(styles.Title.Render(r.Owner) + "\n\n")
	line(localityLabel, r.Locality)
	if r.LocalityCode != nil {
		line("Code", fmt.Sprintf("%.0f", *r.LocalityCode))
	}
	line("Prior Sale", formatDate(r.PriorSaleDate))
	line("Last Sale", formatDate(r.LastSaleDate))
	line("Amount", formatMoney(r.LastSaleAmount))
	line("Year Built", formatInt(r.YearBuilt))
	line("Type", r.Type.String())

	p := r.Point()
	switch {
	case !p.Valid:
		line("Location", styles.Warn.Render("unavailable; cannot determine zoning"))
	case zones == nil:
		line("Location", fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng))
	default:
		line("Location", fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng))
		if attrs, found := zones.Attributes(p.Lat, p.Lng); !found {
			line("Zoning", styles.Muted.Render("no zoning district found"))
		} else if z := zones.Zone(p.Lat, p.Lng); z != "" {
			line("Zoning", z)
		} else {
			line("Zoning", styles.Muted.Render(fmt.Sprintf("district found (%d attributes) but zoning code missing", len(attrs))))
		}
	}

	// remaining columns in a stable order
	if len(r.Fields) > 0 {
		b.WriteString("\n")
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if v := r.Fields[k]; v != "" {
				line(truncate(k, 17), v)
			}
		}
	}
	return styles.Box.Render(strings.TrimRight(b.String(), "\n"))
}
