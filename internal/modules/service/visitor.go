package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/infra/blob"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/export"
	"github.com/AbelardoOk/PlanTracker/internal/telemetry"
)

const dateLayout = "2006-01-02"

var timeLayouts = []string{"15:04", "15:04:05"}

type VisitorService interface {
	Create(ctx context.Context, actor uuid.UUID, plantID uuid.UUID, in CreateVisitorInput) (*model.Visitor, error)
	List(ctx context.Context, actor uuid.UUID, in ListVisitorsInput) ([]model.Visitor, error)
	Export(ctx context.Context, actor uuid.UUID, in ListVisitorsInput, format export.Format, w io.Writer) (int, error)
	Photo(ctx context.Context, actor uuid.UUID, visitorID uuid.UUID) (*Photo, error)
}

type visitorService struct {
	visitors  repo.VisitorRepo
	plants    repo.PlantRepo
	photos    photos
	publisher EventPublisher
	cfg       *config.Config
	log       *zap.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewVisitorService(visitors repo.VisitorRepo, plants repo.PlantRepo, store blob.Store, publisher EventPublisher, cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics) VisitorService {
	return &visitorService{
		visitors:  visitors,
		plants:    plants,
		photos:    photos{store: store, cfg: cfg, log: log},
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		now:       time.Now,
	}
}

type CreateVisitorInput struct {
	Name        string
	PopularName string
	UseNow      bool
	Date        string // YYYY-MM-DD, required unless UseNow
	Time        string // HH:MM[:SS], required unless UseNow
	Latitude    *float64
	Longitude   *float64
	Behavior    string
	NumVisitors int
	TypeVisitor string
	FlowerTypes []string
	Resources   []string
	Photo       *Upload
}

// ListVisitorsInput holds the raw filter query. Empty fields impose no constraint.
type ListVisitorsInput struct {
	ProjectName string `form:"project"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	Type        string `form:"type"`
	Resource    string `form:"resource"`
}

func (s *visitorService) Create(ctx context.Context, actor uuid.UUID, plantID uuid.UUID, in CreateVisitorInput) (*model.Visitor, error) {
	plant, err := s.plants.Get(ctx, plantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("load plant: %w", err)
	}
	if err := authorize(s.metrics, opCreateVisitor, actor, plant.Project); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	visitor := &model.Visitor{
		PlantID:     plantID,
		Name:        requireText(v, "name", in.Name, 150),
		PopularName: optionalText(v, "popular_name", in.PopularName, 150),
		UseNow:      in.UseNow,
		Behavior:    optionalText(v, "behavior", in.Behavior, 150),
		NumVisitors: in.NumVisitors,
		TypeVisitor: optionalText(v, "type", in.TypeVisitor, 150),
	}
	s.setObservedAt(v, visitor, in)

	if in.Latitude == nil {
		v.Add("latitude", msgRequired)
	} else if *in.Latitude < -90 || *in.Latitude > 90 {
		v.Add("latitude", "must be between -90 and 90")
	} else {
		visitor.Latitude = *in.Latitude
	}
	if in.Longitude == nil {
		v.Add("longitude", msgRequired)
	} else if *in.Longitude < -180 || *in.Longitude > 180 {
		v.Add("longitude", "must be between -180 and 180")
	} else {
		visitor.Longitude = *in.Longitude
	}
	if in.NumVisitors < 0 {
		v.Add("num_visitors", "must not be negative")
	}

	for _, f := range selections(v, "flower_types", in.FlowerTypes, model.FlowerTypeChoices) {
		visitor.FlowerTypes = append(visitor.FlowerTypes, model.VisitorFlowerType{Value: f})
	}
	for _, r := range selections(v, "resources", in.Resources, model.ResourceChoices) {
		visitor.Resources = append(visitor.Resources, model.VisitorResource{Value: r})
	}

	if err := v.Err(); err != nil {
		return nil, err
	}

	key, err := s.photos.save(ctx, "visitors", in.Photo)
	if err != nil {
		return nil, err
	}
	visitor.PhotoKey = key

	if err := s.visitors.Create(ctx, visitor); err != nil {
		s.photos.remove(ctx, key)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlantNotFound
		}
		return nil, fmt.Errorf("create visitor: %w", err)
	}
	visitor.PhotoURL = s.photos.url(ctx, key)

	s.metrics.RecordCreated(telemetry.KindVisitor)
	publishEvent(ctx, s.publisher, s.log, s.cfg.RabbitMQ.RoutingKey.VisitorCreated, RecordEvent{
		ActorID:       actor,
		ProjectID:     plant.ProjectID,
		PlantID:       &plant.ID,
		PlantCode:     plant.Code,
		VisitorID:     &visitor.ID,
		VisitorNumber: visitor.Number,
	})
	return visitor, nil
}

// setObservedAt fills the observation date and time of day, from the clock
// when UseNow is set and from the submitted fields otherwise.
func (s *visitorService) setObservedAt(v *ValidationError, visitor *model.Visitor, in CreateVisitorInput) {
	if in.UseNow {
		now := s.now()
		visitor.ObservedOn = datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
		visitor.ObservedAt = datatypes.NewTime(now.Hour(), now.Minute(), now.Second(), 0)
		return
	}

	if d := strings.TrimSpace(in.Date); d == "" {
		v.Add("date", "required unless use_now is set")
	} else if day, err := time.Parse(dateLayout, d); err != nil {
		v.Add("date", "use the YYYY-MM-DD format")
	} else {
		visitor.ObservedOn = datatypes.Date(day)
	}

	tod := strings.TrimSpace(in.Time)
	if tod == "" {
		v.Add("time", "required unless use_now is set")
		return
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, tod); err == nil {
			visitor.ObservedAt = datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0)
			return
		}
	}
	v.Add("time", "use the HH:MM format")
}

// selections validates multi-choice values against choices, dropping blanks
// and duplicates and keeping the submitted order.
func selections(v *ValidationError, field string, values []string, choices []string) []string {
	allowed := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		allowed[c] = struct{}{}
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, raw := range values {
		val := strings.ToLower(strings.TrimSpace(raw))
		if val == "" {
			continue
		}
		if _, ok := allowed[val]; !ok {
			v.Add(field, fmt.Sprintf("%q is not a valid choice", raw))
			continue
		}
		if _, dup := seen[val]; dup {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

func (s *visitorService) List(ctx context.Context, actor uuid.UUID, in ListVisitorsInput) ([]model.Visitor, error) {
	f, err := parseVisitorFilter(actor, in)
	if err != nil {
		return nil, err
	}
	items, err := s.visitors.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	if items == nil {
		items = []model.Visitor{}
	}
	return items, nil
}

// Export writes the same rows List returns as a table in format and returns the row count.
func (s *visitorService) Export(ctx context.Context, actor uuid.UUID, in ListVisitorsInput, format export.Format, w io.Writer) (int, error) {
	items, err := s.List(ctx, actor, in)
	if err != nil {
		return 0, err
	}
	if err := export.Write(w, format, items); err != nil {
		return 0, fmt.Errorf("render %s export: %w", format, err)
	}
	s.metrics.RecordExport(string(format), len(items))
	return len(items), nil
}

func (s *visitorService) Photo(ctx context.Context, actor uuid.UUID, visitorID uuid.UUID) (*Photo, error) {
	visitor, err := s.visitors.Get(ctx, visitorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, fmt.Errorf("load visitor: %w", err)
	}
	if visitor.Plant == nil {
		return nil, ErrPlantNotFound
	}
	if err := authorize(s.metrics, opPhoto, actor, visitor.Plant.Project); err != nil {
		return nil, err
	}
	return s.photos.open(ctx, visitor.PhotoKey)
}

func parseVisitorFilter(actor uuid.UUID, in ListVisitorsInput) (repo.VisitorFilter, error) {
	v := &ValidationError{}
	f := repo.VisitorFilter{
		ActorID:     actor,
		ProjectName: strings.TrimSpace(in.ProjectName),
		Type:        strings.TrimSpace(in.Type),
		Resource:    strings.TrimSpace(in.Resource),
		DateFrom:    parseDate(v, "date_from", in.DateFrom),
		DateTo:      parseDate(v, "date_to", in.DateTo),
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		v.Add("date_to", "must not be before date_from")
	}
	return f, v.Err()
}

func parseDate(v *ValidationError, field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		v.Add(field, "use the YYYY-MM-DD format")
		return nil
	}
	return &d
}
