package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:ix_project_owner_id" json:"owner_id"`

	Name        string `gorm:"type:varchar(150);not null" json:"name"`
	Advisor     string `gorm:"type:varchar(150);not null" json:"advisor"`
	Location    string `gorm:"type:varchar(300);not null" json:"location"`
	Institution string `gorm:"type:varchar(150);not null" json:"institution"`

	// Lower-cased copies for substring filters; SQLite's LOWER only folds ASCII.
	NameLower        string `gorm:"type:varchar(150);not null;default:''" json:"-"`
	InstitutionLower string `gorm:"type:varchar(150);not null;default:''" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Project <-> User (owner)
	Owner *User `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"owner,omitempty"`

	// Project <-> User (collaborators, shared reference)
	Collaborators []User `gorm:"many2many:project_collaborators;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"collaborators"`

	// Project <-> Plant
	Plants []Plant `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"plants,omitempty"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.NameLower = strings.ToLower(p.Name)
	p.InstitutionLower = strings.ToLower(p.Institution)
	return nil
}

// CollaboratorIDs returns the ids of the loaded collaborators.
func (p *Project) CollaboratorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Collaborators))
	for _, c := range p.Collaborators {
		ids = append(ids, c.ID)
	}
	return ids
}
