package docsystem

import "context"

// ProvisioningState is derived from the folders that exist, never stored.
type ProvisioningState string

const (
	NotStarted       ProvisioningState = "not_started"
	Phase1InProgress ProvisioningState = "phase1_in_progress"
	Phase1Done       ProvisioningState = "phase1_done"
	Phase2InProgress ProvisioningState = "phase2_in_progress"
	Phase2Done       ProvisioningState = "phase2_done"
)

// ProvisioningStatus reports where an account's skeleton stands
type ProvisioningStatus struct {
	State          ProvisioningState `json:"state"`
	RootID         *string           `json:"root_id"`
	MissingModules []string          `json:"missing_modules"`
}

// ProvisionResult summarizes one provisioning run
type ProvisionResult struct {
	RootID     string `json:"root_id"`
	Created    int    `json:"created"`
	Reused     int    `json:"reused"`
	DurationMS int64  `json:"duration_ms"`
}

// Provisioner seeds template folder skeletons into the caller's account.
type Provisioner interface {
	// Phase1 ensures the skeleton root and the first modules exist
	Phase1(ctx context.Context, path string) (*ProvisionResult, error)

	// Phase2 ensures the remaining modules exist; the root must already exist
	Phase2(ctx context.Context, path string) (*ProvisionResult, error)

	// Status derives the provisioning state from existing folders
	Status(ctx context.Context) (*ProvisioningStatus, error)

	// ProvisionTemplate creates a fresh copy of a secondary template under
	// parentID (nil = root)
	ProvisionTemplate(ctx context.Context, key string, parentID *string, path string) (*ProvisionResult, error)
}

// ProgressTracker records advisory in-flight markers for provisioning phases.
// Markers only ever refine a state derived from existing folders.
type ProgressTracker interface {
	Begin(ctx context.Context, accountID string, phase int) error
	End(ctx context.Context, accountID string, phase int) error
	// Active returns the phase currently marked in flight, or 0
	Active(ctx context.Context, accountID string) (int, error)
}
