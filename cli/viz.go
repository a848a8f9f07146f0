// ABOUTME: Visualization CLI commands
// ABOUTME: Handles viz dashboard and graph generation commands
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
	"github.com/harperreed/dealerdesk/viz"
)

func writeGraph(path, dot string) error {
	if path != "" {
		return os.WriteFile(path, []byte(dot), 0644)
	}
	fmt.Fprintln(out, dot)
	return nil
}

// VizGraphPipelineCommand generates the outreach pipeline graph.
func VizGraphPipelineCommand(s *store.Store, args []string) error {
	fs := newFlagSet("viz graph pipeline")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	generator := viz.NewGraphGenerator(s.Dealers(), s.Activities())
	dot, err := generator.GeneratePipelineGraph(context.Background())
	if err != nil {
		return err
	}
	return writeGraph(*output, dot)
}

// VizGraphDealerCommand generates a graph of one dealer's activity history.
func VizGraphDealerCommand(s *store.Store, args []string) error {
	fs := newFlagSet("viz graph dealer")
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dealer ID required")
	}

	generator := viz.NewGraphGenerator(s.Dealers(), s.Activities())
	dot, err := generator.GenerateDealerGraph(context.Background(), models.ID(fs.Arg(0)))
	if err != nil {
		return err
	}
	return writeGraph(*output, dot)
}

func VizDashboardCommand(s *store.Store, args []string) error {
	stats := viz.GenerateDashboardStats(s.Dealers(), s.Activities(), nowFunc())
	fmt.Fprint(out, viz.RenderDashboard(stats))
	return nil
}
