package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

// VisitorFilter narrows the visitor listing. Zero fields impose no constraint;
// the rest are combined with AND. Dates are inclusive and compared by day.
type VisitorFilter struct {
	ActorID     uuid.UUID
	ProjectName string
	DateFrom    *time.Time
	DateTo      *time.Time
	Type        string
	Resource    string
}

type VisitorRepo interface {
	Create(ctx context.Context, v *model.Visitor) error
	Get(ctx context.Context, visitorID uuid.UUID) (*model.Visitor, error)
	List(ctx context.Context, f VisitorFilter) ([]model.Visitor, error)
}

type visitorRepo struct{ db *gorm.DB }

func NewVisitorRepo(db *gorm.DB) VisitorRepo {
	return &visitorRepo{db: db}
}

// Create assigns v.Number and inserts the visitor with its selections in one transaction.
func (r *visitorRepo) Create(ctx context.Context, v *model.Visitor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := allocateVisitorNumber(tx, v.PlantID)
		if err != nil {
			return err
		}
		v.Number = n
		return tx.Omit("Plant").Create(v).Error
	})
}

// Get loads the visitor with the plant and project chain needed for the scope check.
func (r *visitorRepo) Get(ctx context.Context, visitorID uuid.UUID) (*model.Visitor, error) {
	var v model.Visitor
	err := r.db.WithContext(ctx).
		Preload("Plant.Project.Collaborators").
		Preload("FlowerTypes").
		Preload("Resources").
		Where("id = ?", visitorID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns the visitors of every project the actor owns or collaborates on.
// Plant and project rows are joined for filtering and preloaded in batches, so
// the cost does not grow with one lookup per visitor.
func (r *visitorRepo) List(ctx context.Context, f VisitorFilter) ([]model.Visitor, error) {
	db := r.db.WithContext(ctx)

	shared := db.Session(&gorm.Session{NewDB: true}).
		Table("project_collaborators").
		Select("project_id").
		Where("user_id = ?", f.ActorID)

	q := db.Model(&model.Visitor{}).
		Select("visitors.*").
		Joins("JOIN plants ON plants.id = visitors.plant_id").
		Joins("JOIN projects ON projects.id = plants.project_id").
		Where("(projects.owner_id = ? OR projects.id IN (?))", f.ActorID, shared)

	if name := strings.TrimSpace(f.ProjectName); name != "" {
		q = q.Where("projects.name_lower LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	if f.DateFrom != nil {
		q = q.Where("visitors.observed_on >= ?", dayStart(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("visitors.observed_on <= ?", dayStart(*f.DateTo))
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		pattern := containsPattern(t)
		q = q.Where(
			"(visitors.type_lower LIKE ? ESCAPE '\\' OR EXISTS (SELECT 1 FROM visitor_flower_types WHERE visitor_flower_types.visitor_id = visitors.id AND visitor_flower_types.value LIKE ? ESCAPE '\\'))",
			pattern, pattern,
		)
	}
	if res := strings.TrimSpace(f.Resource); res != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM visitor_resources WHERE visitor_resources.visitor_id = visitors.id AND visitor_resources.value LIKE ? ESCAPE '\\')",
			containsPattern(res),
		)
	}

	var items []model.Visitor
	return items, q.
		Preload("Plant.Project").
		Preload("FlowerTypes").
		Preload("Resources").
		Order("visitors.observed_on ASC, visitors.observed_at ASC, plants.code ASC, visitors.visitor_number ASC").
		Find(&items).Error
}

// dayStart truncates t to midnight UTC of its calendar day, the form observation
// dates are stored in.
func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
