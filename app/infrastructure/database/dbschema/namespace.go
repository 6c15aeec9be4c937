package dbschema

import (
	domain "github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Namespace{})
}

// Namespace records the canonical spelling known for a namespace name
// within an application, so a differently-cased request can be folded onto
// the same cache key as the release it actually resolves to.
type Namespace struct {
	BaseModel
	AppID         string `gorm:"uniqueIndex:idx_namespace_app_canonical;not null"`
	Name          string `gorm:"not null"`
	CanonicalName string `gorm:"uniqueIndex:idx_namespace_app_canonical;not null"`
}

func NewSchemaNamespace(n *domain.Namespace) *Namespace {
	return &Namespace{
		AppID:         n.AppID,
		Name:          n.Name,
		CanonicalName: n.CanonicalName,
	}
}

func (n *Namespace) EtoD() *domain.Namespace {
	return &domain.Namespace{
		AppID:         n.AppID,
		Name:          n.Name,
		CanonicalName: n.CanonicalName,
	}
}
