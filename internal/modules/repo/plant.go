package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

type PlantRepo interface {
	Create(ctx context.Context, p *model.Plant) error
	Get(ctx context.Context, plantID uuid.UUID) (*model.Plant, error)
	GetWithVisitors(ctx context.Context, plantID uuid.UUID) (*model.Plant, error)
	Delete(ctx context.Context, plantID uuid.UUID) error
	PhotoKeys(ctx context.Context, plantID uuid.UUID) ([]string, error)
}

type plantRepo struct{ db *gorm.DB }

func NewPlantRepo(db *gorm.DB) PlantRepo {
	return &plantRepo{db: db}
}

// Create assigns p.Code and inserts the plant in the same transaction.
// Any code already set on p is ignored.
func (r *plantRepo) Create(ctx context.Context, p *model.Plant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := allocatePlantCode(tx, p.Name)
		if err != nil {
			return err
		}
		p.Code = code
		return tx.Omit("Project", "Visitors").Create(p).Error
	})
}

// Get loads the plant with its project and the project's collaborators, which is
// everything the scope check needs.
func (r *plantRepo) Get(ctx context.Context, plantID uuid.UUID) (*model.Plant, error) {
	var p model.Plant
	err := r.db.WithContext(ctx).
		Preload("Project.Collaborators").
		Where("id = ?", plantID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *plantRepo) GetWithVisitors(ctx context.Context, plantID uuid.UUID) (*model.Plant, error) {
	var p model.Plant
	err := r.db.WithContext(ctx).
		Preload("Project.Collaborators").
		Preload("Visitors", func(db *gorm.DB) *gorm.DB { return db.Order("visitors.visitor_number ASC") }).
		Preload("Visitors.FlowerTypes").
		Preload("Visitors.Resources").
		Where("id = ?", plantID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the plant; its visitors go with it through ON DELETE CASCADE.
func (r *plantRepo) Delete(ctx context.Context, plantID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", plantID).Delete(&model.Plant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *plantRepo) PhotoKeys(ctx context.Context, plantID uuid.UUID) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).
		Model(&model.Plant{}).
		Where("id = ? AND photo_key <> ''", plantID).
		Pluck("photo_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("plant photo key: %w", err)
	}

	var visitorKeys []string
	if err := r.db.WithContext(ctx).
		Model(&model.Visitor{}).
		Where("plant_id = ? AND photo_key <> ''", plantID).
		Pluck("photo_key", &visitorKeys).Error; err != nil {
		return nil, fmt.Errorf("visitor photo keys: %w", err)
	}
	return append(keys, visitorKeys...), nil
}
