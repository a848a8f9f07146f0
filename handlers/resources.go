// ABOUTME: MCP resource handlers for exposing dealer directory data
// ABOUTME: Provides read-only access to dealers, activities and the dashboard via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
	"github.com/harperreed/dealerdesk/viz"
)

const uriScheme = "dealers://"

type ResourceHandlers struct {
	store *store.Store
	now   func() time.Time
}

func NewResourceHandlers(s *store.Store) *ResourceHandlers {
	return &ResourceHandlers{store: s, now: time.Now}
}

// Resources lists the fixed resources this handler serves.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: uriScheme + "dealers", Name: "dealers", Description: "Every dealer in the directory", MIMEType: "application/json"},
		{URI: uriScheme + "activities", Name: "activities", Description: "Activity log, most recent first", MIMEType: "application/json"},
		{URI: uriScheme + "dashboard", Name: "dashboard", Description: "Outreach pipeline dashboard", MIMEType: "text/plain"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	switch parts[0] {
	case "dealers":
		if len(parts) == 1 {
			return jsonResource(uri, h.store.Dealers())
		}
		dealer, ok := h.store.Dealer(models.ID(parts[1]))
		if !ok {
			return nil, fmt.Errorf("dealer not found: %s", parts[1])
		}
		return jsonResource(uri, dealer)

	case "activities":
		return jsonResource(uri, h.store.Activities())

	case "dashboard":
		stats := viz.GenerateDashboardStats(h.store.Dealers(), h.store.Activities(), h.now())
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "text/plain", Text: viz.RenderDashboard(stats)},
		}}, nil

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: "application/json", Text: string(data)},
	}}, nil
}
