// ABOUTME: Import utility for bringing legacy dealer and activity exports into a server data directory.
// ABOUTME: Normalizes records, reassigns duplicate ids, with dry-run and backup support.

package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/harperreed/dealerdesk/config"
	"github.com/harperreed/dealerdesk/db"
	"github.com/harperreed/dealerdesk/models"
)

type options struct {
	DealersPath    string
	DealersFormat  string
	ActivitiesPath string
	DataDir        string
	DryRun         bool
	Backup         bool
}

// report summarizes what an import did, or would do on a dry run.
type report struct {
	Dealers           int
	SkippedDealers    int
	ReassignedIDs     int
	Activities        int
	SkippedActivities int
	BackupPath        string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := options{}
	flag.StringVar(&opts.DealersPath, "dealers", "", "Path to legacy dealers: JSON (array or {dealers: [...]}) or CSV with a header row")
	flag.StringVar(&opts.DealersFormat, "format", "", "Dealers format: json or csv (default: from extension, .csv/.dat are CSV)")
	flag.StringVar(&opts.ActivitiesPath, "activities", "", "Path to legacy activities JSON (array or {activities: [...]})")
	flag.StringVar(&opts.DataDir, "data-dir", cfg.DataDir, "Server data directory to import into")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Show what would happen without making changes")
	flag.BoolVar(&opts.Backup, "backup", true, "Back up the existing dealer file before replacing it")
	flag.Parse()

	if opts.DealersPath == "" && opts.ActivitiesPath == "" {
		log.Fatal("Error: -dealers or -activities is required")
	}

	r, err := run(opts, time.Now)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	prefix := ""
	if opts.DryRun {
		prefix = "[DRY RUN] "
	}
	log.Printf("%sDealers: %d (%d ids reassigned, %d rows skipped)", prefix, r.Dealers, r.ReassignedIDs, r.SkippedDealers)
	log.Printf("%sActivities: %d imported, %d already present", prefix, r.Activities, r.SkippedActivities)
	if r.BackupPath != "" {
		log.Printf("Backup created: %s", r.BackupPath)
	}
	log.Println("Import completed successfully")
}

func run(opts options, now func() time.Time) (*report, error) {
	r := &report{}

	if opts.DealersPath != "" {
		if err := importDealers(opts, now, r); err != nil {
			return nil, err
		}
	}
	if opts.ActivitiesPath != "" {
		if err := importActivities(opts, now, r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func importDealers(opts options, now func() time.Time, r *report) error {
	data, err := os.ReadFile(opts.DealersPath)
	if err != nil {
		return fmt.Errorf("failed to read dealers: %w", err)
	}
	format, err := dealerFormat(opts.DealersFormat, opts.DealersPath)
	if err != nil {
		return err
	}

	var dealers []models.DealerRecord
	if format == formatCSV {
		dealers, r.SkippedDealers, err = decodeDealersCSV(data)
	} else {
		dealers, err = db.DecodeDealers(data)
	}
	if err != nil {
		return err
	}

	r.Dealers = len(dealers)
	r.ReassignedIDs = normalizeDealers(dealers, now().UTC())

	if opts.DryRun {
		return nil
	}

	file := db.NewDealerFile(filepath.Join(opts.DataDir, db.DealersFile))
	if opts.Backup {
		backupPath, err := backupFile(file.Path(), now())
		if err != nil {
			return err
		}
		r.BackupPath = backupPath
	}
	return file.Save(dealers)
}

// normalizeDealers fills defaults and gives every record a unique id. It
// returns how many ids were replaced.
func normalizeDealers(dealers []models.DealerRecord, now time.Time) int {
	seen := make(map[models.ID]bool, len(dealers))
	reassigned := 0
	for i := range dealers {
		d := &dealers[i]
		if d.ID == "" || seen[d.ID] {
			if d.ID != "" {
				log.Printf("Duplicate dealer id %s on %q; assigning a new one", d.ID, d.Name)
			}
			d.ID = models.NewID()
			reassigned++
		}
		seen[d.ID] = true
		d.Normalize(now)
	}
	return reassigned
}

func backupFile(path string, now time.Time) (string, error) {
	input, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, now.Format("20060102-150405"))
	if err := os.WriteFile(backupPath, input, 0644); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

func decodeActivities(data []byte) ([]models.ActivityEntry, error) {
	var activities []models.ActivityEntry
	if err := json.Unmarshal(data, &activities); err == nil {
		return activities, nil
	}

	var doc struct {
		Activities []models.ActivityEntry `json:"activities"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse activities: %w", err)
	}
	return doc.Activities, nil
}

func importActivities(opts options, now func() time.Time, r *report) error {
	data, err := os.ReadFile(opts.ActivitiesPath)
	if err != nil {
		return fmt.Errorf("failed to read activities: %w", err)
	}
	activities, err := decodeActivities(data)
	if err != nil {
		return err
	}

	var database *sql.DB
	existing := make(map[models.ID]bool)
	if !opts.DryRun {
		database, err = db.OpenDatabase(filepath.Join(opts.DataDir, db.DatabaseFile))
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		current, err := db.ListActivities(database, 0)
		if err != nil {
			return fmt.Errorf("failed to list existing activities: %w", err)
		}
		for _, a := range current {
			existing[a.ID] = true
		}
	}

	stamp := now().UTC()
	for i := range activities {
		a := &activities[i]
		a.Normalize(stamp)
		if a.Date == nil {
			// Undated legacy entries take their creation day.
			a.Date = models.DateOf(a.CreatedAt)
		}
		if existing[a.ID] {
			r.SkippedActivities++
			continue
		}
		existing[a.ID] = true

		if !opts.DryRun {
			if err := db.CreateActivity(database, a); err != nil {
				return fmt.Errorf("failed to import activity %s: %w", a.ID, err)
			}
		}
		r.Activities++
	}
	return nil
}
