package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

// IngestInput is the input for the ingest workflow.
type IngestInput struct {
	CSVPath string
}

// IngestAirportsWorkflow loads a dataset into the repository and then
// announces it. A failed announcement is logged and does not fail the
// workflow; the data is already stored.
func IngestAirportsWorkflow(ctx workflow.Context, input IngestInput) (*domain.IngestReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting ingest workflow", "csvPath", input.CSVPath)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var a *IngestActivities

	var report *domain.IngestReport
	if err := workflow.ExecuteActivity(ctx, a.LoadAndStore, input.CSVPath).Get(ctx, &report); err != nil {
		return nil, err
	}

	if err := workflow.ExecuteActivity(ctx, a.PublishReport, report).Get(ctx, nil); err != nil {
		logger.Warn("publish failed, dataset stays stored", "batchID", report.BatchID, "error", err)
	}

	logger.Info("Ingest finished", "batchID", report.BatchID, "stored", report.Stored, "skipped", report.Skipped)
	return report, nil
}
