// Command provision runs or inspects template provisioning for one account
// against the configured stores. It resumes accounts whose phase 2 was
// interrupted.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"dossier/internal/app"
	"dossier/internal/config"
	"dossier/internal/domain/models"
	docsysSvc "dossier/internal/domain/services/docsystem"

	"github.com/joho/godotenv"
)

func main() {
	accountID := flag.String("account", "", "account id to provision (required)")
	ownerID := flag.String("owner", "", "user id recorded as owner of created folders (required)")
	email := flag.String("email", "", "owner email")
	phase := flag.String("phase", "all", "phase to run: 1, 2 or all")
	statusOnly := flag.Bool("status", false, "print provisioning status and exit")
	flag.Parse()

	if *accountID == "" || *ownerID == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.ValidateStores(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg, "provision", os.Stderr)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer a.Close()

	ctx = models.WithIdentity(ctx, models.Identity{
		AccountID: *accountID,
		OwnerID:   *ownerID,
		Email:     *email,
	})

	if err := run(ctx, a.Provisioner, *phase, *statusOnly, logger); err != nil {
		logger.Error("provisioning failed", "account_id", *accountID, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, prov docsysSvc.Provisioner, phase string, statusOnly bool, logger *slog.Logger) error {
	if !statusOnly {
		var steps []func(context.Context, string) (*docsysSvc.ProvisionResult, error)
		switch phase {
		case "1":
			steps = append(steps, prov.Phase1)
		case "2":
			steps = append(steps, prov.Phase2)
		case "all":
			steps = append(steps, prov.Phase1, prov.Phase2)
		default:
			return fmt.Errorf("unknown phase %q", phase)
		}

		for _, step := range steps {
			result, err := step(ctx, "")
			if err != nil {
				return err
			}
			logger.Info("phase complete",
				"root_id", result.RootID,
				"created", result.Created,
				"reused", result.Reused,
				"duration_ms", result.DurationMS,
			)
		}
	}

	status, err := prov.Status(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}
