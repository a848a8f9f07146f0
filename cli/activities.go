// ABOUTME: Activity CLI commands
// ABOUTME: Log interactions with dealers and review the activity history
package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

// LogActivityCommand records an interaction with a dealer.
func LogActivityCommand(s *store.Store, args []string) error {
	fs := newFlagSet("log-activity")
	dealer := fs.String("dealer", "", "Dealer ID (required)")
	date := fs.String("date", "", "Activity date (YYYY-MM-DD, default: today)")
	kind := fs.String("type", string(models.ActivityCall), "Activity type: call, email, meeting, test_drive, follow_up, other")
	notes := fs.String("notes", "", "What happened (required)")
	followUp := fs.String("follow-up", "", "Follow-up date (YYYY-MM-DD)")
	statusUpdate := fs.String("status-update", "", "Status noted for this activity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := store.ActivityInput{
		DealerID:     models.ID(*dealer),
		Notes:        *notes,
		StatusUpdate: *statusUpdate,
	}

	if *kind != "" {
		t, err := models.ParseActivityType(*kind)
		if err != nil {
			return err
		}
		in.Type = t
	}

	if *date == "" {
		now := nowFunc()
		today := models.NewDate(now.Year(), now.Month(), now.Day())
		in.Date = &today
	} else {
		d, err := parseDateFlag("date", *date)
		if err != nil {
			return err
		}
		in.Date = d
	}

	fu, err := parseDateFlag("follow-up", *followUp)
	if err != nil {
		return err
	}
	in.FollowUpDate = fu

	entry, saved, err := s.AddActivity(context.Background(), in)
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("--%s is required", flagForField(verr.Field))
	}
	if err != nil {
		return err
	}

	what := fmt.Sprintf("Logged %s with %s on %s", entry.Type.Label(), s.DealerName(entry.DealerID), entry.When().Format(models.DateLayout))
	if err := reportSave(saved, what); err != nil {
		return err
	}
	if entry.FollowUpDate != nil {
		fmt.Fprintf(out, "  Follow up: %s\n", entry.FollowUpDate)
	}
	return nil
}

// flagForField maps an input field name to the flag that sets it.
func flagForField(field string) string {
	switch field {
	case "dealerId":
		return "dealer"
	default:
		return field
	}
}

// ListActivitiesCommand lists activities, most recent first.
func ListActivitiesCommand(s *store.Store, args []string) error {
	fs := newFlagSet("list-activities")
	dealer := fs.String("dealer", "", "Only activities for this dealer ID")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var activities []models.ActivityEntry
	if *dealer != "" {
		activities = s.ActivitiesFor(models.ID(*dealer))
	} else {
		activities = s.Activities()
	}

	if len(activities) == 0 {
		fmt.Fprintln(out, "No activities found")
		return nil
	}
	total := len(activities)
	if *limit > 0 && len(activities) > *limit {
		activities = activities[:*limit]
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDEALER\tTYPE\tFOLLOW UP\tNOTES")
	fmt.Fprintln(w, "----\t------\t----\t---------\t-----")

	for _, a := range activities {
		followUp := "-"
		if a.FollowUpDate != nil {
			followUp = a.FollowUpDate.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.When().Format(models.DateLayout), s.DealerName(a.DealerID), a.Type.Label(), followUp, truncate(a.Notes, 40))
	}

	_ = w.Flush()
	fmt.Fprintf(out, "\nTotal: %d activit(ies)\n", total)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
