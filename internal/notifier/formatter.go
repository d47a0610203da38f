package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"CompSim/internal/model"
	"CompSim/internal/recorder"
	"CompSim/internal/season"
)

var kindLabels = map[model.BonusKind]string{
	model.BonusRiseup:   "Rise-up binary",
	model.BonusProduct:  "Product free",
	model.BonusMatching: "Matching",
	model.BonusCar:      "Car",
	model.BonusHouse:    "House",
	model.BonusSharing:  "Sharing",
}

func yen(v int64) string {
	return "¥" + humanize.Comma(v)
}

// payoutRatio is bonus over paid-in as a percentage, or 0 when nothing was paid.
func payoutRatio(bonus, paid int64) float64 {
	if paid == 0 {
		return 0
	}
	return float64(bonus) / float64(paid) * 100
}

func writeSummary(b *strings.Builder, s model.Summary) {
	for _, k := range model.BonusKinds {
		kt := s[k]
		b.WriteString(fmt.Sprintf("  %s: %s (%d members)\n", kindLabels[k], yen(kt.Amount), kt.Count))
	}
}

// FormatSeasonReport formats a completed season for Telegram.
func FormatSeasonReport(runID string, res *season.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Season %d</b> | run %s\n\n", res.Season, runID))
	b.WriteString(fmt.Sprintf("Members: %d (active %d)\n", res.Members, res.Active))
	if len(res.Orphans) > 0 {
		b.WriteString(fmt.Sprintf("⚠️ Unknown sponsors: %d\n", len(res.Orphans)))
	}

	b.WriteString("\n💰 <b>Bonuses:</b>\n")
	writeSummary(&b, res.Summary)

	t := res.Totals
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Paid in: %s\n", yen(t.PaidThisSeason)))
	b.WriteString(fmt.Sprintf("  Paid out: %s (%.1f%%)\n", yen(t.BonusThisSeason), payoutRatio(t.BonusThisSeason, t.PaidThisSeason)))
	b.WriteString(fmt.Sprintf("  Lifetime: %s in, %s out\n", yen(t.PaidLifetime), yen(t.BonusLifetime)))
	return b.String()
}

// FormatLedger formats the run ledger.
func FormatLedger(state *model.RunState) string {
	var b strings.Builder
	b.WriteString("📦 <b>Simulation ledger</b>\n\n")
	if state.Season == 0 {
		b.WriteString("No season has run yet.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Last season: %d\n", state.Season))
	b.WriteString(fmt.Sprintf("Last run: %s at %s\n", state.LastRunID, state.LastRunAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Season paid in: %s\n", yen(state.LastTotals.PaidThisSeason)))
	b.WriteString(fmt.Sprintf("Season paid out: %s\n", yen(state.LastTotals.BonusThisSeason)))
	b.WriteString(fmt.Sprintf("All seasons: %s in, %s out (%.1f%%)\n",
		yen(state.LifetimePaid), yen(state.LifetimeBonus), payoutRatio(state.LifetimeBonus, state.LifetimePaid)))
	if len(state.LastSummary) > 0 {
		b.WriteString("\n<b>Last season by kind:</b>\n")
		writeSummary(&b, state.LastSummary)
	}
	b.WriteString(fmt.Sprintf("\nUpdated: %s\n", state.UpdatedAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatHistory formats recent runs, newest first.
func FormatHistory(runs []recorder.SeasonRun) string {
	if len(runs) == 0 {
		return "No recorded seasons."
	}
	var b strings.Builder
	b.WriteString("📅 <b>Recent seasons</b>\n\n")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("#%d %s | %d/%d active | in %s | out %s\n",
			r.Season, r.RecordedAt().Format("2006-01-02"), r.Active, r.Members,
			yen(r.PaidThisSeason), yen(r.BonusThisSeason)))
	}
	return b.String()
}

// FormatMemberHistory formats one member's recorded seasons.
func FormatMemberHistory(name string, recs []recorder.MemberRecord) string {
	if len(recs) == 0 {
		return fmt.Sprintf("No records for %s.", name)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👤 <b>%s</b>\n\n", name))
	for _, r := range recs {
		status := "active"
		if !r.Active {
			status = "inactive"
		}
		b.WriteString(fmt.Sprintf("#%d rank %d | team %d | bank %d | %s | %s\n",
			r.Season, r.Rank, r.SubtreeSize, r.BankCount, status, yen(r.BonusThisSeason)))
	}
	return b.String()
}
