// ABOUTME: Graphviz rendering of the dealer outreach pipeline
// ABOUTME: Status stages in workflow order with each dealer attached to its stage
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/dealerdesk/models"
)

// GraphGenerator renders DOT graphs from a snapshot of the directory.
type GraphGenerator struct {
	dealers    []models.DealerRecord
	activities []models.ActivityEntry
}

func NewGraphGenerator(dealers []models.DealerRecord, activities []models.ActivityEntry) *GraphGenerator {
	return &GraphGenerator{dealers: dealers, activities: activities}
}

var statusColors = map[models.Status]string{
	models.StatusNotContacted: "lightgrey",
	models.StatusContacted:    "lightblue",
	models.StatusFollowUp:     "lightyellow",
	models.StatusScheduled:    "lightcyan",
	models.StatusDeclined:     "mistyrose",
	models.StatusSold:         "lightgreen",
}

type renderFunc func(graph *cgraph.Graph) error

// render runs build against a fresh graph and returns it as DOT.
func render(ctx context.Context, build renderFunc) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	if err := build(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

// GeneratePipelineGraph draws one node per status, chained in workflow order,
// with every dealer linked to its current status.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	counts := make(map[models.Status]int)
	for _, d := range g.dealers {
		counts[d.Status]++
	}

	return render(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel("Dealer Outreach Pipeline")
		graph.SetRankDir(cgraph.LRRank)

		stages := make(map[models.Status]*cgraph.Node)
		var prev *cgraph.Node
		for _, status := range models.Statuses {
			node, err := graph.CreateNodeByName("status_" + status.Slug())
			if err != nil {
				return fmt.Errorf("failed to create status node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n(%d)", status, counts[status]))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(statusColors[status])
			stages[status] = node

			if prev != nil {
				edge, err := graph.CreateEdgeByName("next", prev, node)
				if err != nil {
					return fmt.Errorf("failed to create stage edge: %w", err)
				}
				edge.SetStyle("bold")
			}
			prev = node
		}

		for _, d := range g.dealers {
			stage, ok := stages[d.Status]
			if !ok {
				// Statuses outside the workflow get their own stage.
				node, err := graph.CreateNodeByName("status_" + d.Status.Slug())
				if err != nil {
					return fmt.Errorf("failed to create status node: %w", err)
				}
				node.SetLabel(fmt.Sprintf("%s\n(%d)", d.Status, counts[d.Status]))
				node.SetShape("box")
				node.SetStyle("dashed")
				stages[d.Status] = node
				stage = node
			}

			node, err := graph.CreateNodeByName("dealer_" + d.ID.String())
			if err != nil {
				return fmt.Errorf("failed to create dealer node: %w", err)
			}
			label := d.Name
			if d.ContactPerson != "" {
				label += "\n" + d.ContactPerson
			}
			node.SetLabel(label)
			node.SetShape("ellipse")

			edge, err := graph.CreateEdgeByName("in_stage", stage, node)
			if err != nil {
				return fmt.Errorf("failed to create dealer edge: %w", err)
			}
			edge.SetStyle("dashed")
			edge.SetDir("none")
		}
		return nil
	})
}

// GenerateDealerGraph draws a dealer with every activity logged against it.
func (g *GraphGenerator) GenerateDealerGraph(ctx context.Context, id models.ID) (string, error) {
	var dealer *models.DealerRecord
	for i := range g.dealers {
		if g.dealers[i].ID == id {
			dealer = &g.dealers[i]
			break
		}
	}
	if dealer == nil {
		return "", fmt.Errorf("dealer not found: %s", id)
	}

	return render(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel(dealer.Name + " activity")
		graph.SetRankDir(cgraph.LRRank)

		root, err := graph.CreateNodeByName("dealer_" + dealer.ID.String())
		if err != nil {
			return fmt.Errorf("failed to create dealer node: %w", err)
		}
		root.SetLabel(fmt.Sprintf("%s\n(%s)", dealer.Name, dealer.Status))
		root.SetShape("box")
		root.SetStyle("filled")
		root.SetFillColor(statusColors[dealer.Status])

		for _, a := range g.activities {
			if a.DealerID != dealer.ID {
				continue
			}
			node, err := graph.CreateNodeByName("activity_" + a.ID.String())
			if err != nil {
				return fmt.Errorf("failed to create activity node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", a.Type.Label(), a.When().Format(models.DateLayout)))
			node.SetShape("note")

			edge, err := graph.CreateEdgeByName(string(a.Type), root, node)
			if err != nil {
				return fmt.Errorf("failed to create activity edge: %w", err)
			}
			if a.StatusUpdate != "" {
				edge.SetLabel(a.StatusUpdate)
			}
		}
		return nil
	})
}
