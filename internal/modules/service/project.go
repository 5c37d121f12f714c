package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/infra/blob"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

type ProjectService interface {
	Create(ctx context.Context, actor uuid.UUID, in CreateProjectInput) (*model.Project, error)
	ListHome(ctx context.Context, actor uuid.UUID, f repo.ProjectFilter) (*HomeOutput, error)
	Get(ctx context.Context, actor uuid.UUID, projectID uuid.UUID) (*model.Project, error)
	Delete(ctx context.Context, actor uuid.UUID, projectID uuid.UUID) error
}

type projectService struct {
	projects  repo.ProjectRepo
	users     repo.UserRepo
	photos    photos
	publisher EventPublisher
	cfg       *config.Config
	log       *zap.Logger
	metrics   *telemetry.Metrics
}

func NewProjectService(projects repo.ProjectRepo, users repo.UserRepo, store blob.Store, publisher EventPublisher, cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics) ProjectService {
	return &projectService{
		projects:  projects,
		users:     users,
		photos:    photos{store: store, cfg: cfg, log: log},
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
	}
}

type CreateProjectInput struct {
	Name          string   `json:"name"`
	Advisor       string   `json:"advisor"`
	Location      string   `json:"location"`
	Institution   string   `json:"institution"`
	Collaborators []string `json:"collaborators"` // usernames
}

// HomeOutput is the home listing: projects the actor owns and projects shared with them.
type HomeOutput struct {
	Owned  []model.Project `json:"my_projects"`
	Shared []model.Project `json:"shared_projects"`
}

func (s *projectService) Create(ctx context.Context, actor uuid.UUID, in CreateProjectInput) (*model.Project, error) {
	v := &ValidationError{}
	p := &model.Project{
		OwnerID:     actor,
		Name:        requireText(v, "name", in.Name, 150),
		Advisor:     requireText(v, "advisor", in.Advisor, 150),
		Location:    requireText(v, "location", in.Location, 300),
		Institution: requireText(v, "institution", in.Institution, 150),
	}

	collaborators, err := s.resolveCollaborators(ctx, actor, in.Collaborators, v)
	if err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	p.Collaborators = collaborators

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.metrics.RecordCreated(telemetry.KindProject)
	publishEvent(ctx, s.publisher, s.log, s.cfg.RabbitMQ.RoutingKey.ProjectCreated, RecordEvent{
		ActorID:   actor,
		ProjectID: p.ID,
	})
	return p, nil
}

// resolveCollaborators maps usernames to users. Duplicates and the owner
// are dropped; unknown usernames are a validation failure.
func (s *projectService) resolveCollaborators(ctx context.Context, actor uuid.UUID, usernames []string, v *ValidationError) ([]model.User, error) {
	seen := make(map[string]struct{}, len(usernames))
	wanted := make([]string, 0, len(usernames))
	for _, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		wanted = append(wanted, name)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	found, err := s.users.ListByUsernames(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("resolve collaborators: %w", err)
	}

	out := make([]model.User, 0, len(found))
	for _, u := range found {
		delete(seen, u.Username)
		if u.ID != actor {
			out = append(out, u)
		}
	}
	if len(seen) > 0 {
		missing := make([]string, 0, len(seen))
		for name := range seen {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		v.Add("collaborators", "unknown users: "+strings.Join(missing, ", "))
	}
	return out, nil
}

func (s *projectService) ListHome(ctx context.Context, actor uuid.UUID, f repo.ProjectFilter) (*HomeOutput, error) {
	owned, err := s.projects.ListOwned(ctx, actor, f)
	if err != nil {
		return nil, fmt.Errorf("list owned projects: %w", err)
	}
	shared, err := s.projects.ListShared(ctx, actor, f)
	if err != nil {
		return nil, fmt.Errorf("list shared projects: %w", err)
	}
	if owned == nil {
		owned = []model.Project{}
	}
	if shared == nil {
		shared = []model.Project{}
	}
	return &HomeOutput{Owned: owned, Shared: shared}, nil
}

// Get returns the project with its plants for the details view.
func (s *projectService) Get(ctx context.Context, actor uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.projects.GetWithPlants(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if err := authorize(s.metrics, opProjectDetails, actor, p); err != nil {
		return nil, err
	}
	for i := range p.Plants {
		p.Plants[i].PhotoURL = s.photos.url(ctx, p.Plants[i].PhotoKey)
	}
	return p, nil
}

// Delete removes the project and everything under it. Only the owner may delete.
func (s *projectService) Delete(ctx context.Context, actor uuid.UUID, projectID uuid.UUID) error {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("load project: %w", err)
	}
	if err := authorizeDelete(s.metrics, actor, p); err != nil {
		return err
	}

	keys, err := s.projects.PhotoKeys(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}
	s.photos.remove(ctx, keys...)

	s.metrics.RecordDeleted(telemetry.KindProject)
	publishEvent(ctx, s.publisher, s.log, s.cfg.RabbitMQ.RoutingKey.ProjectDeleted, RecordEvent{
		ActorID:   actor,
		ProjectID: projectID,
	})
	return nil
}

// requireText trims s and records a validation message when it is empty or longer than limit runes.
func requireText(v *ValidationError, field, s string, limit int) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		v.Add(field, msgRequired)
	case utf8.RuneCountInString(s) > limit:
		v.Add(field, fmt.Sprintf("use at most %d characters", limit))
	}
	return s
}

// optionalText trims s and records a validation message when it is longer than limit runes.
func optionalText(v *ValidationError, field, s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > limit {
		v.Add(field, fmt.Sprintf("use at most %d characters", limit))
	}
	return s
}
