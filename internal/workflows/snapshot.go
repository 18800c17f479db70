package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/fleetspot/internal/core/domain"
)

// SnapshotInput is the input for the hotspot snapshot workflow.
type SnapshotInput struct {
	City  string
	State string
	Date  string
	Tier  string
}

// WorkflowID is a stable ID so a region and day is archived at most once
// concurrently.
func (in SnapshotInput) WorkflowID() string {
	return "hotspot-snapshot:" + domain.SnapshotKey(in.City, in.State, in.Date, in.Tier)
}

// HotspotSnapshotWorkflow computes the hotspots of a region and day and
// archives them in the snapshot store. It returns the object key.
func HotspotSnapshotWorkflow(ctx workflow.Context, input SnapshotInput) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting hotspot snapshot workflow", "city", input.City, "state", input.State, "date", input.Date)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var snapshot domain.HotspotSnapshot
	if err := workflow.ExecuteActivity(ctx, "ComputeHotspots", input).Get(ctx, &snapshot); err != nil {
		return "", err
	}

	var key string
	if err := workflow.ExecuteActivity(ctx, "StoreSnapshot", &snapshot).Get(ctx, &key); err != nil {
		return "", err
	}

	logger.Info("Hotspot snapshot stored", "key", key, "clusters", len(snapshot.Clusters))
	return key, nil
}
