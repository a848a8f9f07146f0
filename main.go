// ABOUTME: Entry point for the dealerdesk CLI, TUI, MCP server and HTTP server
// ABOUTME: Routes to subcommands based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/dealerdesk/cli"
	"github.com/harperreed/dealerdesk/config"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	offline := flag.Bool("offline", false, "Work from the local fallback only")
	remoteURL := flag.String("remote", "", "Remote base URL (overrides config)")
	logFile := flag.String("log-file", "", "Write logs to this file")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("dealerdesk version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *offline {
		cfg.Offline = true
	}
	if *remoteURL != "" {
		cfg.RemoteURL = *remoteURL
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Route to top-level command
	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "serve":
		logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()

		if err := cli.ServeCommand(cfg, logger, commandArgs); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case "config":
		runConfig(cfg, commandArgs)

	case "mcp":
		// stdio carries the protocol, so logs go to a file
		app := openApp(ctx, cfg, config.DefaultLogFile())
		defer closeApp(app)

		if err := cli.MCPCommand(ctx, app, version); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "tui":
		app := openApp(ctx, cfg, config.DefaultLogFile())
		defer closeApp(app)

		if err := cli.TUICommand(app); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}

	case "status":
		app := openApp(ctx, cfg, "")
		defer closeApp(app)

		if err := cli.StatusCommand(app); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "dealers", "activity", "viz":
		if len(commandArgs) == 0 {
			fmt.Printf("Error: %s requires a subcommand\n\n", command)
			printUsage()
			os.Exit(1)
		}

		app := openApp(ctx, cfg, "")
		err := runStoreCommand(app, command, commandArgs[0], commandArgs[1:])
		closeApp(app)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func openApp(ctx context.Context, cfg *config.Config, logPath string) *cli.App {
	app, err := cli.OpenApp(ctx, cfg, logPath)
	if err != nil {
		log.Fatalf("Failed to open dealer directory: %v", err)
	}
	return app
}

func closeApp(app *cli.App) {
	if err := app.Close(); err != nil {
		log.Printf("warning: failed to close local store: %v", err)
	}
}

func runStoreCommand(app *cli.App, group, sub string, args []string) error {
	s := app.Store

	switch group + " " + sub {
	case "dealers add":
		return cli.AddDealerCommand(s, args)
	case "dealers list":
		return cli.ListDealersCommand(s, args)
	case "dealers update":
		return cli.UpdateDealerCommand(s, args)
	case "dealers delete":
		return cli.DeleteDealerCommand(s, args)

	case "activity log":
		return cli.LogActivityCommand(s, args)
	case "activity list":
		return cli.ListActivitiesCommand(s, args)

	case "viz dashboard":
		return cli.VizDashboardCommand(s, args)
	case "viz graph":
		if len(args) == 0 {
			return fmt.Errorf("viz graph requires a type (pipeline or dealer)")
		}
		switch args[0] {
		case "pipeline":
			return cli.VizGraphPipelineCommand(s, args[1:])
		case "dealer":
			return cli.VizGraphDealerCommand(s, args[1:])
		}
		return fmt.Errorf("unknown graph type: %s", args[0])
	}

	return fmt.Errorf("unknown %s command: %s", group, sub)
}

func runConfig(cfg *config.Config, args []string) {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "show":
		fmt.Printf("Config file:  %s\n", config.ConfigPath())
		fmt.Printf("Remote URL:   %s\n", cfg.RemoteURL)
		fmt.Printf("Offline:      %t\n", cfg.Offline)
		fmt.Printf("Fallback dir: %s\n", cfg.FallbackDir)
		fmt.Printf("Data dir:     %s\n", cfg.DataDir)
		fmt.Printf("Port:         %d\n", cfg.Port)
		fmt.Printf("Timeout:      %s\n", cfg.Timeout)
		fmt.Printf("Log level:    %s\n", cfg.LogLevel)
	case "save":
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}
		fmt.Printf("✓ Config saved to %s\n", config.ConfigPath())
	default:
		fmt.Printf("Unknown config command: %s\n\n", sub)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`dealerdesk v%s - Dealer outreach directory

USAGE:
  dealerdesk [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --offline              Work from the local fallback only
  --remote <url>         Remote base URL (default: from config)
  --log-file <path>      Write logs to a file instead of stderr

COMMANDS:
  dealers                Manage dealers
  activity               Log and review activity
  status                 Show where data was loaded from
  viz                    Visualization commands
  tui                    Interactive terminal interface
  mcp                    Start MCP server on stdio
  serve                  Run the dealer/activity HTTP server
  config                 Show or save configuration

DEALER COMMANDS:
  dealerdesk dealers add          Add a new dealer
    --name <name>                   Dealer name (default: New Dealer)
    --address <address>             Street address
    --phone <phone>                 Phone number
    --email <email>                 Email address
    --website <url>                 Website
    --contact <name>                Contact person
    --status <status>               Not Contacted, Contacted, Follow Up, Scheduled, Declined, Sold
    --last-contact <YYYY-MM-DD>     Last contact date
    --notes <notes>                 Notes

  dealerdesk dealers list         List dealers
    --query <text>                  Search name, address, contact, email, phone, notes
    --status <status>               Filter by status
    --sort <order>                  added (default), recent (latest contact first), name

  dealerdesk dealers update [flags] <id>  Update a dealer
    (same flags as add, plus --clear-last-contact)
    Note: flags must come before the dealer ID

  dealerdesk dealers delete <id>  Delete a dealer (activities are kept)

ACTIVITY COMMANDS:
  dealerdesk activity log         Log an interaction
    --dealer <id>                   Dealer ID (required)
    --type <type>                   call, email, meeting, test_drive, follow_up, other
    --date <YYYY-MM-DD>             Activity date (default: today)
    --notes <notes>                 What happened (required)
    --follow-up <YYYY-MM-DD>        Follow-up date
    --status-update <text>          Status noted with the activity

  dealerdesk activity list        List activity, most recent first
    --dealer <id>                   Only this dealer
    --limit <n>                     Max results (default: 50)

VIZ COMMANDS:
  dealerdesk viz dashboard               Pipeline dashboard
  dealerdesk viz graph pipeline          Outreach pipeline graph
    --output <file>                        Output file (default: stdout)
  dealerdesk viz graph dealer <id>       One dealer's activity graph
    --output <file>                        Output file (default: stdout)

SERVER:
  dealerdesk serve
    --port <n>                      Port (default: from config, 8080)
    --data-dir <dir>                Dealer file and activity database directory

ENVIRONMENT:
  DEALERDESK_REMOTE_URL, DEALERDESK_OFFLINE, DEALERDESK_FALLBACK_DIR,
  DEALERDESK_DATA_DIR, DEALERDESK_PORT, DEALERDESK_TIMEOUT,
  DEALERDESK_LOG_LEVEL, DEALERDESK_LOG_FILE (also read from .env)

EXAMPLES:
  # Add a dealer
  dealerdesk dealers add --name "Acme Motors" --contact "Jo Park" --phone 555-0100

  # Log a call and schedule a follow-up
  dealerdesk activity log --dealer <id> --type call --notes "Left voicemail" --follow-up 2024-07-01

  # Find dealers still waiting on a follow-up
  dealerdesk dealers list --status "follow up"

`, version)
}
