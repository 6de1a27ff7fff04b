package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dossier/internal/domain"
	"dossier/internal/domain/models"
	docsystem "dossier/internal/domain/models/docsystem"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
	"dossier/internal/domain/services"
	docsysSvc "dossier/internal/domain/services/docsystem"
	"dossier/internal/templates"
)

// provisioner seeds template skeletons with check-then-create on every node.
// Nothing is tracked besides the folders themselves, so any interrupted run
// resumes by running again.
type provisioner struct {
	folderRepo  docsysRepo.FolderRepository
	registry    *templates.Registry
	progress    docsysSvc.ProgressTracker
	authorizer  services.ResourceAuthorizer
	revalidator services.Revalidator
	logger      *slog.Logger
}

// NewProvisioner creates a new template provisioner
func NewProvisioner(
	folderRepo docsysRepo.FolderRepository,
	registry *templates.Registry,
	progress docsysSvc.ProgressTracker,
	authorizer services.ResourceAuthorizer,
	revalidator services.Revalidator,
	logger *slog.Logger,
) docsysSvc.Provisioner {
	return &provisioner{
		folderRepo:  folderRepo,
		registry:    registry,
		progress:    progress,
		authorizer:  authorizer,
		revalidator: revalidator,
		logger:      logger,
	}
}

// provisionRun counts creates and reuses for one run
type provisionRun struct {
	ident   models.Identity
	system  bool
	created int
	reused  int
	started time.Time
}

func (r *provisionRun) result(rootID string) *docsysSvc.ProvisionResult {
	return &docsysSvc.ProvisionResult{
		RootID:     rootID,
		Created:    r.created,
		Reused:     r.reused,
		DurationMS: time.Since(r.started).Milliseconds(),
	}
}

// Phase1 ensures the skeleton root and the first-phase modules
func (p *provisioner) Phase1(ctx context.Context, path string) (*docsysSvc.ProvisionResult, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := p.registry.Get(templates.IECTD)
	if err != nil {
		return nil, err
	}

	// A started phase runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	p.begin(ctx, ident.AccountID, 1)
	defer p.end(ctx, ident.AccountID, 1)

	run := &provisionRun{ident: ident, system: tmpl.System, started: time.Now()}

	root, err := p.ensureFolder(ctx, run, tmpl.Root.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("phase 1: ensure root: %w", err)
	}

	if err := p.ensurePhase(ctx, run, tmpl, 1, root.ID); err != nil {
		return nil, fmt.Errorf("phase 1: %w", err)
	}

	result := run.result(root.ID)
	p.logger.Info("provisioning phase complete",
		"account_id", ident.AccountID,
		"phase", 1,
		"root_id", root.ID,
		"created", result.Created,
		"reused", result.Reused,
		"duration_ms", result.DurationMS,
	)

	revalidate(ctx, p.revalidator, p.logger, path)
	return result, nil
}

// Phase2 ensures the remaining modules. The root must already exist.
func (p *provisioner) Phase2(ctx context.Context, path string) (*docsysSvc.ProvisionResult, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := p.registry.Get(templates.IECTD)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	root, err := p.findRoot(ctx, ident, tmpl.Root.Name)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &domain.InvalidOperationError{
			Message: fmt.Sprintf("phase 2 requires the %q folder; run phase 1 first", tmpl.Root.Name),
		}
	}

	p.begin(ctx, ident.AccountID, 2)
	defer p.end(ctx, ident.AccountID, 2)

	run := &provisionRun{ident: ident, system: tmpl.System, started: time.Now()}
	for phase := 2; phase <= tmpl.PhaseCount(); phase++ {
		if err := p.ensurePhase(ctx, run, tmpl, phase, root.ID); err != nil {
			return nil, fmt.Errorf("phase %d: %w", phase, err)
		}
	}

	result := run.result(root.ID)
	p.logger.Info("provisioning phase complete",
		"account_id", ident.AccountID,
		"phase", 2,
		"root_id", root.ID,
		"created", result.Created,
		"reused", result.Reused,
		"duration_ms", result.DurationMS,
	)

	revalidate(ctx, p.revalidator, p.logger, path)
	return result, nil
}

// Status derives the provisioning state from the folders that exist. The
// in-flight marker only distinguishes "in progress" from "done".
func (p *provisioner) Status(ctx context.Context) (*docsysSvc.ProvisioningStatus, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := p.registry.Get(templates.IECTD)
	if err != nil {
		return nil, err
	}

	active, err := p.progress.Active(ctx, ident.AccountID)
	if err != nil {
		p.logger.Warn("failed to read provisioning marker", "account_id", ident.AccountID, "error", err)
		active = 0
	}

	root, err := p.findRoot(ctx, ident, tmpl.Root.Name)
	if err != nil {
		return nil, err
	}

	status := &docsysSvc.ProvisioningStatus{MissingModules: tmpl.ModuleNames()}
	if root == nil {
		status.State = docsysSvc.NotStarted
		if active == 1 {
			status.State = docsysSvc.Phase1InProgress
		}
		return status, nil
	}
	status.RootID = &root.ID

	children, err := p.folderRepo.List(ctx, docsysRepo.FolderFilter{
		AccountID: ident.AccountID,
		Parent:    docsysRepo.Inside(root.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	present := make(map[string]bool, len(children))
	for _, child := range children {
		present[child.Name] = true
	}

	missing := make([]string, 0)
	for _, name := range tmpl.ModuleNames() {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	status.MissingModules = missing

	switch {
	case len(missing) == 0:
		status.State = docsysSvc.Phase2Done
	case active == 2:
		status.State = docsysSvc.Phase2InProgress
	case active == 1:
		status.State = docsysSvc.Phase1InProgress
	default:
		status.State = docsysSvc.Phase1Done
	}
	return status, nil
}

// ProvisionTemplate creates a fresh copy of a single-pass template under
// parentID. Only the template root is always new; everything below it is
// create-or-reuse so a retried call fills in the same copy.
func (p *provisioner) ProvisionTemplate(ctx context.Context, key string, parentID *string, path string) (*docsysSvc.ProvisionResult, error) {
	ident, err := requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	tmpl, err := p.registry.Get(key)
	if err != nil {
		return nil, err
	}
	if tmpl.PhaseCount() > 0 {
		return nil, &domain.InvalidOperationError{
			Message: fmt.Sprintf("template %s is provisioned in phases", key),
		}
	}

	parentID = normalizeParent(parentID)
	if parentID != nil {
		parent, err := p.folderRepo.GetByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if err := p.authorizer.CanAccessFolder(ctx, ident, parent); err != nil {
			return nil, err
		}
	}

	ctx = context.WithoutCancel(ctx)
	run := &provisionRun{ident: ident, system: tmpl.System, started: time.Now()}

	root := newFolder(ident, tmpl.Root.Name, parentID, tmpl.System)
	if err := p.folderRepo.Create(ctx, root); err != nil {
		return nil, fmt.Errorf("create template root: %w", err)
	}
	run.created++

	for _, child := range tmpl.Root.Children {
		if err := p.ensureTree(ctx, run, child, &root.ID); err != nil {
			return nil, fmt.Errorf("template %s: %w", key, err)
		}
	}

	result := run.result(root.ID)
	p.logger.Info("template provisioned",
		"account_id", ident.AccountID,
		"template", key,
		"root_id", root.ID,
		"parent_id", parentID,
		"created", result.Created,
		"reused", result.Reused,
	)

	revalidate(ctx, p.revalidator, p.logger, path)
	return result, nil
}

func (p *provisioner) ensurePhase(ctx context.Context, run *provisionRun, tmpl *templates.Template, phase int, rootID string) error {
	modules, err := tmpl.PhaseModules(phase)
	if err != nil {
		return err
	}
	for _, module := range modules {
		if err := p.ensureTree(ctx, run, module, &rootID); err != nil {
			return fmt.Errorf("module %s: %w", module.Name, err)
		}
	}
	return nil
}

// ensureTree ensures node under parentID, then recurses into its children
// whether the node was found or created.
func (p *provisioner) ensureTree(ctx context.Context, run *provisionRun, node templates.Node, parentID *string) error {
	folder, err := p.ensureFolder(ctx, run, node.Name, parentID)
	if err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := p.ensureTree(ctx, run, child, &folder.ID); err != nil {
			return err
		}
	}
	return nil
}

// ensureFolder reuses the oldest folder named name under parentID, or
// creates one.
func (p *provisioner) ensureFolder(ctx context.Context, run *provisionRun, name string, parentID *string) (*docsystem.Folder, error) {
	existing, err := p.lookup(ctx, run.ident, name, parentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		run.reused++
		return existing, nil
	}

	folder := newFolder(run.ident, name, parentID, run.system)
	if err := p.folderRepo.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	run.created++
	return folder, nil
}

func (p *provisioner) findRoot(ctx context.Context, ident models.Identity, name string) (*docsystem.Folder, error) {
	return p.lookup(ctx, ident, name, nil)
}

func (p *provisioner) lookup(ctx context.Context, ident models.Identity, name string, parentID *string) (*docsystem.Folder, error) {
	found, err := p.folderRepo.List(ctx, docsysRepo.FolderFilter{
		AccountID: ident.AccountID,
		Parent:    docsysRepo.Under(parentID),
		Name:      &name,
		Sort:      docsysRepo.Sort{Field: docsysRepo.SortCreatedAt},
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (p *provisioner) begin(ctx context.Context, accountID string, phase int) {
	if err := p.progress.Begin(ctx, accountID, phase); err != nil {
		p.logger.Warn("failed to set provisioning marker", "account_id", accountID, "phase", phase, "error", err)
	}
}

func (p *provisioner) end(ctx context.Context, accountID string, phase int) {
	if err := p.progress.End(ctx, accountID, phase); err != nil {
		p.logger.Warn("failed to clear provisioning marker", "account_id", accountID, "phase", phase, "error", err)
	}
}
