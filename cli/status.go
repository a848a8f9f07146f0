// ABOUTME: Status and serve subcommands
// ABOUTME: Reports where data was loaded from and runs the reference HTTP server
package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/harperreed/dealerdesk/config"
	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
	"github.com/harperreed/dealerdesk/web"
)

// StatusCommand prints how each collection was loaded and the pipeline counts.
func StatusCommand(app *App) error {
	mode := "online (" + app.Config.RemoteURL + ")"
	if app.Config.Offline {
		mode = "offline"
	}
	fmt.Fprintf(out, "Mode:      %s\n", mode)
	fmt.Fprintf(out, "Fallback:  %s\n\n", app.Config.FallbackDir)

	printCollection("Dealers", app.Report.Dealers)
	printCollection("Activities", app.Report.Activities)

	counts := make(map[models.Status]int)
	for _, d := range app.Store.Dealers() {
		counts[d.Status]++
	}
	fmt.Fprintln(out, "\nPipeline:")
	for _, st := range models.Statuses {
		fmt.Fprintf(out, "  %-14s %d\n", st, counts[st])
	}

	slots, err := app.Slots()
	if err != nil {
		return fmt.Errorf("failed to list local slots: %w", err)
	}
	fmt.Fprintf(out, "\nLocal slots: %d\n", len(slots))
	for _, slot := range slots {
		fmt.Fprintf(out, "  %s\n", slot)
	}
	return nil
}

func printCollection(label string, r store.CollectionReport) {
	fmt.Fprintf(out, "%-11s %d loaded from %s\n", label+":", r.Count, r.Source)
	if r.Err != nil {
		fmt.Fprintf(out, "  ⚠ remote: %v\n", r.Err)
	}
}

// ServeCommand runs the HTTP server that hosts the dealer and activity resources.
func ServeCommand(cfg *config.Config, logger *zap.Logger, args []string) error {
	fs := newFlagSet("serve")
	port := fs.Int("port", cfg.Port, "Port to listen on")
	dataDir := fs.String("data-dir", cfg.DataDir, "Directory for the dealer file and activity database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	database, err := db.OpenDatabase(filepath.Join(*dataDir, db.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	dealers := db.NewDealerFile(filepath.Join(*dataDir, db.DealersFile))
	server := web.NewServer(database, dealers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("serving dealer directory",
		zap.Int("port", *port),
		zap.String("data_dir", *dataDir))
	return server.Start(ctx, *port)
}
