// Command importcsv loads a CSV of leads into the database from the shell,
// for backfills too large to push through the HTTP endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/app/bootstrap"
	"github.com/talentbridge/sales-crm-platform/internal/bulkimport"
	appconfig "github.com/talentbridge/sales-crm-platform/internal/config"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/users"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		file     = flag.String("file", "", "path to the CSV file (required)")
		assignee = flag.String("assignee", "", "user id to assign every lead to; empty round-robins over active BD executives")
		actor    = flag.String("actor", "", "user id recorded as the importing actor (required)")
	)
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if *file == "" || *actor == "" {
		flag.Usage()
		os.Exit(2)
	}
	if cfg.UseMemoryStore() {
		logger.Error("importcsv requires DATABASE_URL")
		os.Exit(1)
	}

	ctx := context.Background()
	pool := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	db := bootstrap.ConnectSQL(ctx, cfg.DatabaseURL, logger)
	if pool == nil || db == nil {
		os.Exit(1)
	}
	defer pool.Close()
	defer func() { _ = db.Close() }()

	leadRepo := leads.NewPostgresRepository(pool)
	userRepo := users.NewSQLRepository(db)
	leadSvc := leads.NewService(leadRepo, userRepo, activity.NewService(db), nil, logger.Component("leads"))
	importer := bulkimport.NewImporter(leadSvc, leadRepo, userRepo, nil, logger.Component("import"))

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("failed to open file", "path", *file, "error", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	summary, err := importer.Run(ctx, f, bulkimport.Options{AssigneeID: *assignee}, *actor)
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("rows: %d inserted: %d skipped: %d\n", summary.TotalRows, summary.Inserted, summary.Skipped)
	for _, e := range summary.Errors {
		fmt.Printf("  line %d (%s): %s\n", e.Line, e.Ref, e.Reason)
	}
	if summary.Skipped > 0 {
		os.Exit(1)
	}
}
