package repo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/ident"
)

// ErrEmptyPlantName is returned when a plant name normalizes to nothing.
var ErrEmptyPlantName = errors.New("plant name is empty after normalization")

// allocatePlantCode returns the code for name, minting a new one if no plant
// with the same normalized name exists. It must run inside the transaction that
// inserts the plant: the sequence row stays locked until that transaction ends,
// so concurrent allocators are serialized.
func allocatePlantCode(tx *gorm.DB, name string) (string, error) {
	normalized := ident.NormalizeName(name)
	if normalized == "" {
		return "", ErrEmptyPlantName
	}

	seq, err := lockSequence(tx, model.SequencePlantCode)
	if err != nil {
		return "", err
	}

	var existing model.PlantCode
	err = tx.Where("normalized_name = ?", normalized).Take(&existing).Error
	if err == nil {
		return existing.Code, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("lookup plant code: %w", err)
	}

	next := seq.Value + 1
	if err := tx.Model(&model.Sequence{}).
		Where("name = ?", seq.Name).
		UpdateColumn("value", next).Error; err != nil {
		return "", fmt.Errorf("advance plant code sequence: %w", err)
	}

	code := ident.FormatPlantCode(next)
	if err := tx.Create(&model.PlantCode{NormalizedName: normalized, Code: code}).Error; err != nil {
		return "", fmt.Errorf("register plant code: %w", err)
	}
	return code, nil
}

// lockSequence loads the named sequence row with a row lock, creating it on
// first use. A new plant_code sequence starts at the highest code already registered.
func lockSequence(tx *gorm.DB, name string) (*model.Sequence, error) {
	var seq model.Sequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Take(&seq).Error
	if err == nil {
		return &seq, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lock sequence %s: %w", name, err)
	}

	start, err := maxRegisteredPlantCode(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Sequence{Name: name, Value: start}).Error; err != nil {
		return nil, fmt.Errorf("create sequence %s: %w", name, err)
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).Take(&seq).Error; err != nil {
		return nil, fmt.Errorf("lock sequence %s: %w", name, err)
	}
	return &seq, nil
}

// maxRegisteredPlantCode parses every registered code; MAX() on the text column
// would order PA1000 before PA999.
func maxRegisteredPlantCode(tx *gorm.DB) (int64, error) {
	var codes []string
	if err := tx.Model(&model.PlantCode{}).Pluck("code", &codes).Error; err != nil {
		return 0, fmt.Errorf("list plant codes: %w", err)
	}
	var highest int64
	for _, c := range codes {
		n, err := ident.ParsePlantCode(c)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest, nil
}

// allocateVisitorNumber returns max(visitor_number)+1 for the plant, or 1 for
// its first visitor. The plant row is locked first so two creations on the same
// plant cannot read the same maximum.
func allocateVisitorNumber(tx *gorm.DB, plantID uuid.UUID) (int64, error) {
	var plant model.Plant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", plantID).
		Take(&plant).Error; err != nil {
		return 0, err
	}

	var last int64
	if err := tx.Model(&model.Visitor{}).
		Where("plant_id = ?", plantID).
		Select("COALESCE(MAX(visitor_number), 0)").
		Scan(&last).Error; err != nil {
		return 0, fmt.Errorf("max visitor number: %w", err)
	}
	return ident.NextVisitorNumber(last), nil
}
