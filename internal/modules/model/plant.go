package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Scent string

const (
	ScentIdiopathic  Scent = "idiopathic"
	ScentSympathetic Scent = "sympathetic"
)

func (s Scent) Valid() bool {
	return s == ScentIdiopathic || s == ScentSympathetic
}

type Plant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:ix_plant_project_id" json:"project_id"`

	// Code is shared by every plant whose normalized name matches (see PlantCode).
	Code string `gorm:"type:varchar(16);not null;index:ix_plant_code" json:"plant_id"`

	Name           string `gorm:"type:varchar(150);not null" json:"name"`
	PopularName    string `gorm:"type:varchar(150);not null;default:''" json:"popular_name"`
	PhotoKey       string `gorm:"type:text;not null;default:''" json:"-"`
	PhotoURL       string `gorm:"-" json:"photo_url,omitempty"`
	NumIndividuals int    `gorm:"not null;check:chk_plant_num_individuals,num_individuals >= 1" json:"num_individuals"`
	NumFlowers     int    `gorm:"not null;default:0;check:chk_plant_num_flowers,num_flowers >= 0" json:"num_flowers"`
	Scent          Scent  `gorm:"type:varchar(16);not null;check:chk_plant_scent,scent IN ('idiopathic','sympathetic')" json:"scent"`
	Resources      string `gorm:"type:varchar(150);not null;default:''" json:"resources"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Plant <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"project,omitempty"`

	// Plant <-> Visitor
	Visitors []Visitor `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"visitors,omitempty"`
}

func (Plant) TableName() string { return "plants" }

func (p *Plant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Label is how a plant is shown in listings and exports, e.g. "Rosa (PA001)".
func (p *Plant) Label() string {
	return p.Name + " (" + p.Code + ")"
}

// PlantCode maps a normalized plant name to its code. Both columns are unique,
// so two names can never race to the same code and one name never gets two.
type PlantCode struct {
	NormalizedName string    `gorm:"type:varchar(300);primaryKey" json:"normalized_name"`
	Code           string    `gorm:"type:varchar(16);not null;uniqueIndex:uq_plant_codes_code" json:"code"`
	CreatedAt      time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PlantCode) TableName() string { return "plant_codes" }

// Sequence is a named monotonic counter.
type Sequence struct {
	Name  string `gorm:"type:varchar(64);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "sequences" }

const SequencePlantCode = "plant_code"
