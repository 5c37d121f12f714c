package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

// ProjectFilter narrows project listings. Empty fields impose no constraint.
type ProjectFilter struct {
	Name        string
	Institution string
}

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	GetWithPlants(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID, f ProjectFilter) ([]model.Project, error)
	ListShared(ctx context.Context, userID uuid.UUID, f ProjectFilter) ([]model.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error
	PhotoKeys(ctx context.Context, projectID uuid.UUID) ([]string, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

// Create inserts the project and its collaborator links in one transaction.
// Collaborators must already exist; only the join rows are written.
func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Collaborators.*").Create(p).Error
	})
}

func (r *projectRepo) Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB { return db.Order("users.username ASC") }).
		Where("id = ?", projectID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetWithPlants(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB { return db.Order("users.username ASC") }).
		Preload("Plants", func(db *gorm.DB) *gorm.DB { return db.Order("plants.created_at ASC, plants.id ASC") }).
		Where("id = ?", projectID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListOwned(ctx context.Context, ownerID uuid.UUID, f ProjectFilter) ([]model.Project, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("projects.owner_id = ?", ownerID)
	q = applyProjectFilter(q, f)

	var items []model.Project
	return items, q.
		Preload("Owner").
		Preload("Collaborators").
		Order("projects.created_at DESC, projects.id DESC").
		Find(&items).Error
}

// ListShared returns projects where userID is a collaborator but not the owner.
func (r *projectRepo) ListShared(ctx context.Context, userID uuid.UUID, f ProjectFilter) ([]model.Project, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Joins("JOIN project_collaborators ON project_collaborators.project_id = projects.id").
		Where("project_collaborators.user_id = ? AND projects.owner_id <> ?", userID, userID)
	q = applyProjectFilter(q, f)

	var items []model.Project
	return items, q.
		Select("projects.*").
		Preload("Owner").
		Preload("Collaborators").
		Order("projects.created_at DESC, projects.id DESC").
		Find(&items).Error
}

// Delete removes the project; plants, visitors and collaborator links go with it
// through ON DELETE CASCADE.
func (r *projectRepo) Delete(ctx context.Context, projectID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", projectID).Delete(&model.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PhotoKeys lists the blob keys of every plant and visitor photo under the project.
func (r *projectRepo) PhotoKeys(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	var plantKeys []string
	if err := r.db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("project_id = ? AND photo_key <> ''", projectID).
		Pluck("photo_key", &plantKeys).Error; err != nil {
		return nil, fmt.Errorf("plant photo keys: %w", err)
	}

	var visitorKeys []string
	if err := r.db.WithContext(ctx).
		Model(&model.Visitor{}).
		Joins("JOIN plants ON plants.id = visitors.plant_id").
		Where("plants.project_id = ? AND visitors.photo_key <> ''", projectID).
		Pluck("visitors.photo_key", &visitorKeys).Error; err != nil {
		return nil, fmt.Errorf("visitor photo keys: %w", err)
	}
	return append(plantKeys, visitorKeys...), nil
}

func applyProjectFilter(q *gorm.DB, f ProjectFilter) *gorm.DB {
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("projects.name_lower LIKE ? ESCAPE '\\'", containsPattern(name))
	}
	if inst := strings.TrimSpace(f.Institution); inst != "" {
		q = q.Where("projects.institution_lower LIKE ? ESCAPE '\\'", containsPattern(inst))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
