package dbschema

import "time"

// BaseModel is embedded by every schema struct that needs an identity and
// audit timestamps managed by gorm.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
