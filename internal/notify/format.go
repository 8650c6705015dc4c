package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

const divider = "━━━━━━━━━━━━━━━━━━━"

var priorityEmoji = map[domain.Priority]string{
	domain.PriorityHigh:   "🟢",
	domain.PriorityMedium: "🟡",
	domain.PriorityLow:    "🔴",
}

var categoryLabels = map[domain.Category]string{
	domain.CategoryFlooring: "Bodenarbeiten",
	domain.CategoryAssembly: "Montage",
	domain.CategoryHandover: "Übergabe/Renovierung",
	domain.CategoryOther:    "Sonstiges",
}

var sourceLabels = map[domain.Source]string{
	domain.SourceKleinanzeigen: "Kleinanzeigen",
	domain.SourceMyHammer:      "MyHammer",
	domain.SourceGoogle:        "Google",
	domain.SourceFacebook:      "Facebook",
}

// FormatLead renders the HTML notification for one scored listing.
func FormatLead(res domain.ScoredResult) string {
	l := res.Listing

	emoji, ok := priorityEmoji[res.Priority]
	if !ok {
		emoji = "⚪"
	}
	catLabel, ok := categoryLabels[res.Category]
	if !ok {
		catLabel = "Sonstiges"
	}
	source, ok := sourceLabels[l.Source]
	if !ok {
		source = string(l.Source)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>NEUER AUFTRAG</b> (Score: %d/100)\n%s\n\n",
		emoji, res.TotalScore, divider)
	fmt.Fprintf(&b, "📋 <b>%s</b>\n", html.EscapeString(l.Title))
	fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(l.Location))
	fmt.Fprintf(&b, "🏷️ %s\n", catLabel)
	fmt.Fprintf(&b, "🔗 %s\n", l.URL)

	if l.Price != "" {
		fmt.Fprintf(&b, "💶 %s\n", html.EscapeString(l.Price))
	}

	fmt.Fprintf(&b, "\n📊 Score: %dR + %dL + %dQ\n",
		res.RegionScore, res.ServiceScore, res.QualityScore)
	fmt.Fprintf(&b, "📅 %s | Quelle: %s\n",
		l.FoundAt.Format("02.01.2006, 15:04"), source)

	if l.Description != "" {
		fmt.Fprintf(&b, "\n📝 <i>%s</i>\n", html.EscapeString(truncate(l.Description, 200)))
	}

	if res.ResponseDraft != "" {
		fmt.Fprintf(&b, "\n💬 <b>Vorgeschlagene Antwort:</b>\n<code>%s</code>\n",
			html.EscapeString(res.ResponseDraft))
	}

	return b.String()
}

// FormatDailySummary renders the end-of-day digest.
func FormatDailySummary(stats store.DayStats, top []store.StoredListing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>📊 Tages-Zusammenfassung SE Handwerk</b>\n%s\n\n", divider)
	fmt.Fprintf(&b, "📋 Gefunden: <b>%d</b> Listings\n", stats.Total)
	fmt.Fprintf(&b, "🟢 Hoch: <b>%d</b>\n", stats.High)
	fmt.Fprintf(&b, "🟡 Mittel: <b>%d</b>\n", stats.Medium)
	fmt.Fprintf(&b, "🔴 Niedrig: <b>%d</b>\n", stats.Low)
	fmt.Fprintf(&b, "✅ Beantwortet: <b>%d</b>\n", stats.Answered)

	if len(top) > 0 {
		medals := []string{"🥇", "🥈", "🥉"}
		b.WriteString("\n<b>🏆 Top Aufträge heute:</b>\n")
		for i, l := range top {
			medal := "•"
			if i < len(medals) {
				medal = medals[i]
			}
			fmt.Fprintf(&b, "\n%s <b>%s</b>\n   📍 %s | Score: %d\n   🔗 %s\n",
				medal, html.EscapeString(truncate(l.Title, 50)),
				html.EscapeString(l.Location), l.Score, l.URL)
		}
	}

	return b.String()
}

// FormatPendingDecisions renders the review prompt for open suggestions.
func FormatPendingDecisions(decisions []store.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>🗳 Offene Entscheidungen (%d)</b>\n%s\n", len(decisions), divider)
	for _, d := range decisions {
		fmt.Fprintf(&b, "\n• <b>%s</b> [%s]\n  ID: <code>%s</code>\n",
			html.EscapeString(d.Title), d.Kind, d.ID)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
