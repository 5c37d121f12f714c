package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/infra/blob"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

type PlantService interface {
	Create(ctx context.Context, actor uuid.UUID, projectID uuid.UUID, in CreatePlantInput) (*model.Plant, error)
	Get(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) (*model.Plant, error)
	Delete(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) error
	Photo(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) (*Photo, error)
}

type plantService struct {
	plants    repo.PlantRepo
	projects  repo.ProjectRepo
	photos    photos
	publisher EventPublisher
	cfg       *config.Config
	log       *zap.Logger
	metrics   *telemetry.Metrics
}

func NewPlantService(plants repo.PlantRepo, projects repo.ProjectRepo, store blob.Store, publisher EventPublisher, cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics) PlantService {
	return &plantService{
		plants:    plants,
		projects:  projects,
		photos:    photos{store: store, cfg: cfg, log: log},
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
	}
}

type CreatePlantInput struct {
	Name           string
	PopularName    string
	NumIndividuals int
	NumFlowers     int
	Scent          model.Scent
	Resources      string
	Photo          *Upload
}

func (s *plantService) Create(ctx context.Context, actor uuid.UUID, projectID uuid.UUID, in CreatePlantInput) (*model.Plant, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if err := authorize(s.metrics, opCreatePlant, actor, project); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	p := &model.Plant{
		ProjectID:      projectID,
		Name:           requireText(v, "name", in.Name, 150),
		PopularName:    optionalText(v, "popular_name", in.PopularName, 150),
		NumIndividuals: in.NumIndividuals,
		NumFlowers:     in.NumFlowers,
		Scent:          in.Scent,
		Resources:      optionalText(v, "resources", in.Resources, 150),
	}
	if p.NumIndividuals < 1 {
		v.Add("num_individuals", "must be at least 1")
	}
	if p.NumFlowers < 0 {
		v.Add("num_flowers", "must not be negative")
	}
	if !p.Scent.Valid() {
		v.Add("scent", fmt.Sprintf("must be %q or %q", model.ScentIdiopathic, model.ScentSympathetic))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	key, err := s.photos.save(ctx, "plants", in.Photo)
	if err != nil {
		return nil, err
	}
	p.PhotoKey = key

	if err := s.plants.Create(ctx, p); err != nil {
		s.photos.remove(ctx, key)
		if errors.Is(err, repo.ErrEmptyPlantName) {
			return nil, Invalid("name", "must contain letters or digits")
		}
		return nil, fmt.Errorf("create plant: %w", err)
	}
	p.PhotoURL = s.photos.url(ctx, key)

	s.metrics.RecordCreated(telemetry.KindPlant)
	publishEvent(ctx, s.publisher, s.log, s.cfg.RabbitMQ.RoutingKey.PlantCreated, RecordEvent{
		ActorID:   actor,
		ProjectID: projectID,
		PlantID:   &p.ID,
		PlantCode: p.Code,
	})
	return p, nil
}

// Get returns the plant with its visitors for the details view.
func (s *plantService) Get(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) (*model.Plant, error) {
	p, err := s.plants.GetWithVisitors(ctx, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if err := authorize(s.metrics, opPlantDetails, actor, p.Project); err != nil {
		return nil, err
	}

	p.PhotoURL = s.photos.url(ctx, p.PhotoKey)
	for i := range p.Visitors {
		p.Visitors[i].PhotoURL = s.photos.url(ctx, p.Visitors[i].PhotoKey)
	}
	return p, nil
}

// Delete removes the plant and its visitors. Owner and collaborators may delete plants.
func (s *plantService) Delete(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) error {
	p, err := s.plants.Get(ctx, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlantNotFound
		}
		return fmt.Errorf("load plant: %w", err)
	}
	if err := authorize(s.metrics, opDeletePlant, actor, p.Project); err != nil {
		return err
	}

	keys, err := s.plants.PhotoKeys(ctx, plantID)
	if err != nil {
		return err
	}
	if err := s.plants.Delete(ctx, plantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlantNotFound
		}
		return fmt.Errorf("delete plant: %w", err)
	}
	s.photos.remove(ctx, keys...)

	s.metrics.RecordDeleted(telemetry.KindPlant)
	publishEvent(ctx, s.publisher, s.log, s.cfg.RabbitMQ.RoutingKey.PlantDeleted, RecordEvent{
		ActorID:   actor,
		ProjectID: p.ProjectID,
		PlantID:   &plantID,
		PlantCode: p.Code,
	})
	return nil
}

func (s *plantService) Photo(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) (*Photo, error) {
	p, err := s.plants.Get(ctx, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if err := authorize(s.metrics, opPhoto, actor, p.Project); err != nil {
		return nil, err
	}
	return s.photos.open(ctx, p.PhotoKey)
}
