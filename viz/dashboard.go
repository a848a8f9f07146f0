// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides an ASCII overview of dealer outreach progress
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dealerdesk/models"
)

// StaleAfterDays is how long since last contact before a dealer needs attention.
const StaleAfterDays = 30

type DashboardStats struct {
	// Pipeline overview
	ByStatus map[models.Status]int

	// Overall stats
	TotalDealers    int
	TotalActivities int

	// Recent activity (last 7 days), most recent first
	RecentActivity []ActivityItem

	// Needs attention
	NeverContacted   []string
	StaleDealers     []StaleDealer
	OverdueFollowUps []FollowUp
}

type ActivityItem struct {
	Date        time.Time
	Description string
}

type StaleDealer struct {
	Name      string
	DaysSince int
}

type FollowUp struct {
	Dealer string
	Due    time.Time
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// GenerateDashboardStats summarizes a snapshot of the directory as of now.
func GenerateDashboardStats(dealers []models.DealerRecord, activities []models.ActivityEntry, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		ByStatus:        make(map[models.Status]int),
		TotalDealers:    len(dealers),
		TotalActivities: len(activities),
	}

	names := make(map[models.ID]string, len(dealers))
	for _, d := range dealers {
		names[d.ID] = d.Name
		stats.ByStatus[d.Status]++

		if d.LastContact == nil {
			if d.Status == models.StatusNotContacted {
				stats.NeverContacted = append(stats.NeverContacted, d.Name)
			}
			continue
		}
		if days := daysBetween(d.LastContact.Time, now); days > StaleAfterDays {
			stats.StaleDealers = append(stats.StaleDealers, StaleDealer{Name: d.Name, DaysSince: days})
		}
	}

	nameOf := func(id models.ID) string {
		if name, ok := names[id]; ok {
			return name
		}
		return models.UnknownDealer
	}

	// latest holds the most recent activity date per dealer.
	latest := make(map[models.ID]time.Time)
	for _, a := range activities {
		if w := a.When(); w.After(latest[a.DealerID]) {
			latest[a.DealerID] = w
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, a := range activities {
		when := a.When()
		if when.After(weekAgo) && !when.After(now) {
			stats.RecentActivity = append(stats.RecentActivity, ActivityItem{
				Date:        when,
				Description: fmt.Sprintf("%s with %s", a.Type.Label(), nameOf(a.DealerID)),
			})
		}

		if a.FollowUpDate == nil || !a.FollowUpDate.Before(today) {
			continue
		}
		if !latest[a.DealerID].Before(a.FollowUpDate.Time) {
			continue // something was logged on or after the due date
		}
		stats.OverdueFollowUps = append(stats.OverdueFollowUps, FollowUp{
			Dealer: nameOf(a.DealerID),
			Due:    a.FollowUpDate.Time,
		})
	}

	sort.SliceStable(stats.RecentActivity, func(i, j int) bool {
		return stats.RecentActivity[i].Date.After(stats.RecentActivity[j].Date)
	})
	sort.SliceStable(stats.StaleDealers, func(i, j int) bool {
		return stats.StaleDealers[i].DaysSince > stats.StaleDealers[j].DaysSince
	})
	sort.SliceStable(stats.OverdueFollowUps, func(i, j int) bool {
		return stats.OverdueFollowUps[i].Due.Before(stats.OverdueFollowUps[j].Due)
	})

	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DEALER OUTREACH DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.ByStatus)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  🚗 %d dealers  📝 %d activities\n\n", stats.TotalDealers, stats.TotalActivities))

	if len(stats.RecentActivity) > 0 {
		out.WriteString("RECENT ACTIVITY\n")
		for i, item := range stats.RecentActivity {
			if i == 5 {
				out.WriteString(fmt.Sprintf("  … and %d more\n", len(stats.RecentActivity)-5))
				break
			}
			out.WriteString(fmt.Sprintf("  %s  %s\n", item.Date.Format("Jan 02"), item.Description))
		}
		out.WriteString("\n")
	}

	if len(stats.NeverContacted) > 0 || len(stats.StaleDealers) > 0 || len(stats.OverdueFollowUps) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.OverdueFollowUps) > 0 {
			out.WriteString(fmt.Sprintf("  ⏰ %d follow-ups overdue\n", len(stats.OverdueFollowUps)))
		}
		if len(stats.NeverContacted) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d dealers never contacted\n", len(stats.NeverContacted)))
		}
		if len(stats.StaleDealers) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d dealers - no contact in %d+ days\n", len(stats.StaleDealers), StaleAfterDays))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, byStatus map[models.Status]int) {
	maxCount := 0
	for _, n := range byStatus {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, status := range models.Statuses {
		n := byStatus[status]
		barLength := (n * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-14s %s  %2d\n", status, bar, n))
	}
}
