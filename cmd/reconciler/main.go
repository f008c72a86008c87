// Reconciler sweeps every campaign and verifies that raised_amount matches
// the sum of its donation records. Inconsistent campaigns are frozen by the
// store and reported; the binary exits non-zero so operators notice.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/flexme/backend/internal/config"
	"github.com/flexme/backend/internal/db"
	"github.com/flexme/backend/internal/ledger"
	"github.com/flexme/backend/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	campaignRepo := repositories.NewCampaignRepo(pool)
	ledgerRepo := repositories.NewLedgerRepo(pool, ledger.Policy{
		AllowOverfunding: cfg.AllowOverfunding,
		MaxApplyRetries:  cfg.LedgerMaxRetries,
	})

	ids, err := campaignRepo.ListIDs(ctx)
	if err != nil {
		log.Fatal("failed to list campaigns", zap.Error(err))
	}

	corrupted := 0
	for _, id := range ids {
		report, err := ledgerRepo.Reconcile(ctx, id)
		switch {
		case errors.Is(err, ledger.ErrLedgerCorrupted):
			corrupted++
			log.Error("campaign ledger corrupted, frozen for manual intervention",
				zap.String("campaign_id", id.String()),
				zap.String("raised_amount", report.RaisedAmount.String()),
				zap.String("donation_sum", report.DonationSum.String()),
				zap.Int("donation_count", report.DonationCount),
			)
		case err != nil:
			log.Error("reconcile failed", zap.String("campaign_id", id.String()), zap.Error(err))
		default:
			log.Debug("campaign consistent",
				zap.String("campaign_id", id.String()),
				zap.Int("donation_count", report.DonationCount),
			)
		}
	}

	log.Info("reconciliation sweep done",
		zap.Int("campaigns", len(ids)),
		zap.Int("corrupted", corrupted),
	)
	if corrupted > 0 {
		os.Exit(1)
	}
}
