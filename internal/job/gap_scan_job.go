package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/repo"
	"github.com/Vibhav-Deo/documentation-assistant/internal/service"
)

// GapScanJob runs the gap queries for every active organization so the counts
// show up in the logs before anyone asks.
type GapScanJob struct {
	orgs *repo.OrganizationRepo
	gaps *service.GapService
}

func NewGapScanJob(orgs *repo.OrganizationRepo, gaps *service.GapService) *GapScanJob {
	return &GapScanJob{orgs: orgs, gaps: gaps}
}

func (j *GapScanJob) Name() string {
	return "gap_scan"
}

func (j *GapScanJob) Run(ctx context.Context) error {
	orgs, err := j.orgs.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, org := range orgs {
		logger := logutil.GetLogger(ctx).With(zap.String("org_id", org.ID))
		report, err := j.gaps.ComprehensiveGaps(ctx, org.ID)
		if err != nil {
			logger.Error("gap scan failed", zap.Error(err))
			continue
		}
		logger.Info("gap scan completed",
			zap.Int("orphaned_tickets", len(report.Orphaned.Tickets)),
			zap.Int("undocumented_commits", len(report.Undocumented.Commits)),
			zap.Int("missing_decisions", len(report.MissingDecisions)),
			zap.Int("stale_tickets", len(report.StaleTickets)),
		)
	}
	return nil
}
