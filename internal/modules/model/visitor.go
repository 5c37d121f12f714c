package model

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Allowed values for the multi-choice visitor fields.
var (
	FlowerTypeChoices = []string{"abelha", "borboleta", "besouro", "beija flor", "mariposa", "vespa", "mosca", "tripes", "percevejo", "outros"}
	ResourceChoices   = []string{"pólen", "néctar", "tecido", "óleo", "fragâncias", "resinas"}
)

type Visitor struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID uuid.UUID `gorm:"type:uuid;not null;index:ix_visitor_plant_id;uniqueIndex:uq_visitor_plant_number,priority:1" json:"plant_id"`

	// Number is unique per plant only.
	Number int64 `gorm:"column:visitor_number;not null;uniqueIndex:uq_visitor_plant_number,priority:2" json:"visitor_id"`

	Name        string         `gorm:"type:varchar(150);not null" json:"name"`
	PopularName string         `gorm:"type:varchar(150);not null;default:''" json:"popular_name"`
	PhotoKey    string         `gorm:"type:text;not null;default:''" json:"-"`
	PhotoURL    string         `gorm:"-" json:"photo_url,omitempty"`
	UseNow      bool           `gorm:"not null;default:false" json:"use_now"`
	ObservedOn  datatypes.Date `gorm:"not null;index:ix_visitor_observed_on" json:"date"`
	ObservedAt  datatypes.Time `gorm:"not null" json:"time"`
	Latitude    float64        `gorm:"not null" json:"latitude"`
	Longitude   float64        `gorm:"not null" json:"longitude"`
	Behavior    string         `gorm:"type:varchar(150);not null;default:''" json:"behavior"`
	NumVisitors int            `gorm:"not null;default:0" json:"num_visitors"`
	TypeVisitor string         `gorm:"type:varchar(150);not null;default:''" json:"type"`
	TypeLower   string         `gorm:"type:varchar(150);not null;default:''" json:"-"`

	FlowerTypes []VisitorFlowerType `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"flower_types"`
	Resources   []VisitorResource   `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"resources"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Visitor <-> Plant
	Plant *Plant `gorm:"foreignKey:PlantID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"plant,omitempty"`
}

func (Visitor) TableName() string { return "visitors" }

func (v *Visitor) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.TypeLower = strings.ToLower(v.TypeVisitor)
	return nil
}

// ObservedTime combines the observation date and time of day.
func (v *Visitor) ObservedTime() time.Time {
	d := time.Time(v.ObservedOn)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Add(time.Duration(v.ObservedAt))
}

func (v *Visitor) FlowerTypeValues() []string {
	out := make([]string, 0, len(v.FlowerTypes))
	for _, f := range v.FlowerTypes {
		out = append(out, f.Value)
	}
	return out
}

func (v *Visitor) ResourceValues() []string {
	out := make([]string, 0, len(v.Resources))
	for _, r := range v.Resources {
		out = append(out, r.Value)
	}
	return out
}

// ResourcesText joins the resource selections the way they are shown in exports.
func (v *Visitor) ResourcesText() string {
	return strings.Join(v.ResourceValues(), ",")
}

// VisitorFlowerType is one flower-type selection of a visitor.
type VisitorFlowerType struct {
	VisitorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Value     string    `gorm:"type:varchar(32);primaryKey;index:ix_visitor_flower_type_value" json:"value"`
}

func (VisitorFlowerType) TableName() string { return "visitor_flower_types" }

func (f VisitorFlowerType) MarshalJSON() ([]byte, error) { return sonic.Marshal(f.Value) }

func (f *VisitorFlowerType) UnmarshalJSON(b []byte) error { return sonic.Unmarshal(b, &f.Value) }

// VisitorResource is one resource-type selection of a visitor.
type VisitorResource struct {
	VisitorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Value     string    `gorm:"type:varchar(32);primaryKey;index:ix_visitor_resource_value" json:"value"`
}

func (VisitorResource) TableName() string { return "visitor_resources" }

func (r VisitorResource) MarshalJSON() ([]byte, error) { return sonic.Marshal(r.Value) }

func (r *VisitorResource) UnmarshalJSON(b []byte) error { return sonic.Unmarshal(b, &r.Value) }
