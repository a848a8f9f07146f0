// ABOUTME: MCP server subcommand
// ABOUTME: Exposes the dealer directory as MCP tools and resources on stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealerdesk/handlers"
	"github.com/harperreed/dealerdesk/store"
)

// NewMCPServer registers every dealer directory tool and resource.
func NewMCPServer(s *store.Store, version string) *mcp.Server {
	dealerHandlers := handlers.NewDealerHandlers(s)
	activityHandlers := handlers.NewActivityHandlers(s)
	vizHandlers := handlers.NewVizHandlers(s)
	resourceHandlers := handlers.NewResourceHandlers(s)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dealerdesk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_dealer",
		Description: "Add a new dealer to the directory",
	}, dealerHandlers.AddDealer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_dealers",
		Description: "Search dealers by name, address, contact person, email, phone or notes",
	}, dealerHandlers.FindDealers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_dealer",
		Description: "Update a dealer's details, status or last contact date",
	}, dealerHandlers.UpdateDealer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_dealer",
		Description: "Remove a dealer from the directory; logged activities are kept",
	}, dealerHandlers.DeleteDealer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_dealer_activity",
		Description: "Log a call, email, meeting, test drive or other interaction with a dealer",
	}, activityHandlers.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List logged activities, most recent first, optionally for one dealer",
	}, activityHandlers.ListActivities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of the outreach pipeline or one dealer's activity",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dealer_dashboard",
		Description: "Pipeline counts, recent activity and dealers needing attention",
	}, vizHandlers.Dashboard)

	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App, version string) error {
	app.Logger.Info("starting dealerdesk MCP server")
	return NewMCPServer(app.Store, version).Run(ctx, &mcp.StdioTransport{})
}
