package places

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type State struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cities []City `gorm:"foreignKey:StateID" json:"cities,omitempty"`
}

func (State) TableName() string {
	return "states"
}

// City belongs to exactly one State. Lower Rank means more prominent.
type City struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null;index" json:"name"`
	Population int       `gorm:"not null;default:0" json:"population"`
	Rank       int       `gorm:"not null;index" json:"rank"`
	StateID    uuid.UUID `gorm:"type:uuid;not null;index" json:"state_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	State *State `gorm:"foreignKey:StateID" json:"state,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

func (s *State) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (c *City) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
