// ABOUTME: Activity MCP tool handlers
// ABOUTME: Implements log_dealer_activity and list_activities tools
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

type ActivityHandlers struct {
	store *store.Store
	now   func() time.Time
}

func NewActivityHandlers(s *store.Store) *ActivityHandlers {
	return &ActivityHandlers{store: s, now: time.Now}
}

type LogActivityInput struct {
	DealerID     string `json:"dealer_id" jsonschema:"Dealer ID (required)"`
	Date         string `json:"date,omitempty" jsonschema:"Activity date (YYYY-MM-DD, defaults to today)"`
	Type         string `json:"type" jsonschema:"Activity type: call, email, meeting, test_drive, follow_up, other"`
	Notes        string `json:"notes" jsonschema:"What happened (required)"`
	FollowUpDate string `json:"follow_up_date,omitempty" jsonschema:"When to follow up (YYYY-MM-DD)"`
	StatusUpdate string `json:"status_update,omitempty" jsonschema:"Status noted with this activity"`
}

type ActivityOutput struct {
	ID           string `json:"id"`
	DealerID     string `json:"dealer_id"`
	DealerName   string `json:"dealer_name"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Notes        string `json:"notes"`
	FollowUpDate string `json:"follow_up_date,omitempty"`
	StatusUpdate string `json:"status_update,omitempty"`
	SaveStatus   string `json:"save_status,omitempty"`
}

func (h *ActivityHandlers) LogActivity(ctx context.Context, request *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, ActivityOutput, error) {
	in := store.ActivityInput{
		DealerID:     models.ID(input.DealerID),
		Notes:        input.Notes,
		StatusUpdate: input.StatusUpdate,
	}

	if input.Type != "" {
		t, err := models.ParseActivityType(input.Type)
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		in.Type = t
	}

	if input.Date == "" {
		now := h.now()
		today := models.NewDate(now.Year(), now.Month(), now.Day())
		in.Date = &today
	} else {
		d, err := parseDate("date", input.Date)
		if err != nil {
			return nil, ActivityOutput{}, err
		}
		in.Date = d
	}

	fu, err := parseDate("follow_up_date", input.FollowUpDate)
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	in.FollowUpDate = fu

	entry, saved, err := h.store.AddActivity(ctx, in)
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return nil, ActivityOutput{}, fmt.Errorf("%s is required", snakeField(verr.Field))
	}
	if err != nil {
		return nil, ActivityOutput{}, err
	}
	if saved == store.Unsaved {
		return nil, ActivityOutput{}, fmt.Errorf("activity %s was logged but could not be saved", entry.ID)
	}

	output := h.activityToOutput(entry)
	output.SaveStatus = saved.String()
	return nil, output, nil
}

// snakeField maps an input field name to this tool's argument name.
func snakeField(field string) string {
	if field == "dealerId" {
		return "dealer_id"
	}
	return field
}

type ListActivitiesInput struct {
	DealerID string `json:"dealer_id,omitempty" jsonschema:"Only activities for this dealer"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 25)"`
}

type ListActivitiesOutput struct {
	Activities []ActivityOutput `json:"activities"`
	Total      int              `json:"total"`
}

func (h *ActivityHandlers) ListActivities(_ context.Context, request *mcp.CallToolRequest, input ListActivitiesInput) (*mcp.CallToolResult, ListActivitiesOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 25
	}

	var activities []models.ActivityEntry
	if input.DealerID != "" {
		activities = h.store.ActivitiesFor(models.ID(input.DealerID))
	} else {
		activities = h.store.Activities()
	}

	result := []ActivityOutput{}
	for i := 0; i < len(activities) && i < limit; i++ {
		result = append(result, h.activityToOutput(activities[i]))
	}

	return nil, ListActivitiesOutput{Activities: result, Total: len(activities)}, nil
}

func (h *ActivityHandlers) activityToOutput(a models.ActivityEntry) ActivityOutput {
	output := ActivityOutput{
		ID:           a.ID.String(),
		DealerID:     a.DealerID.String(),
		DealerName:   h.store.DealerName(a.DealerID),
		Date:         a.When().Format(models.DateLayout),
		Type:         string(a.Type),
		Notes:        a.Notes,
		StatusUpdate: a.StatusUpdate,
	}
	if a.FollowUpDate != nil {
		output.FollowUpDate = a.FollowUpDate.String()
	}
	return output
}
