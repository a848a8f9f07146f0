// ABOUTME: GraphViz and dashboard MCP handlers
// ABOUTME: Provides generate_graph and dealer_dashboard tools for agents
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
	"github.com/harperreed/dealerdesk/viz"
)

type VizHandlers struct {
	store *store.Store
	now   func() time.Time
}

func NewVizHandlers(s *store.Store) *VizHandlers {
	return &VizHandlers{store: s, now: time.Now}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline or dealer"`
	DealerID string `json:"dealer_id,omitempty" jsonschema:"Dealer ID (required for dealer graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	generator := viz.NewGraphGenerator(h.store.Dealers(), h.store.Activities())
	var dot string
	var err error

	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "dealer":
		if input.DealerID == "" {
			return nil, GenerateGraphOutput{}, fmt.Errorf("dealer_id required for dealer graph")
		}
		dot, err = generator.GenerateDealerGraph(ctx, models.ID(input.DealerID))
	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, dealer)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	nodeCount, edgeCount := countStatements(dot)

	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}

// countStatements tallies node and edge statements in DOT source. Long
// attribute lists wrap, so only the first line of a statement is classified.
func countStatements(dot string) (nodes, edges int) {
	inStmt := false
	for _, line := range strings.Split(dot, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !inStmt && line != "}" {
			switch {
			case strings.Contains(line, "->"):
				edges++
			case strings.HasPrefix(line, "graph"), strings.HasPrefix(line, "node"),
				strings.HasPrefix(line, "edge"), strings.HasPrefix(line, "digraph"),
				strings.HasPrefix(line, "subgraph"):
			default:
				nodes++
			}
		}
		inStmt = !strings.HasSuffix(line, ";") && !strings.HasSuffix(line, "{") && line != "}"
	}
	return nodes, edges
}

type DashboardInput struct{}

type DashboardOutput struct {
	Dashboard        string         `json:"dashboard"`
	ByStatus         map[string]int `json:"by_status"`
	NeverContacted   []string       `json:"never_contacted"`
	OverdueFollowUps []string       `json:"overdue_follow_ups"`
}

func (h *VizHandlers) Dashboard(_ context.Context, request *mcp.CallToolRequest, input DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	stats := viz.GenerateDashboardStats(h.store.Dealers(), h.store.Activities(), h.now())

	output := DashboardOutput{
		Dashboard:        viz.RenderDashboard(stats),
		ByStatus:         make(map[string]int, len(stats.ByStatus)),
		NeverContacted:   append([]string{}, stats.NeverContacted...),
		OverdueFollowUps: []string{},
	}
	for status, n := range stats.ByStatus {
		output.ByStatus[string(status)] = n
	}
	for _, f := range stats.OverdueFollowUps {
		output.OverdueFollowUps = append(output.OverdueFollowUps,
			fmt.Sprintf("%s (due %s)", f.Dealer, f.Due.Format(models.DateLayout)))
	}
	return nil, output, nil
}
