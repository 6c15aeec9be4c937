package dbschema

import (
	domain "github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Release{})
}

// Release is the committed content of a namespace on one cluster, with an
// optional data-center scope. Configurations is stored as a JSON blob
// rather than a normalized key/value table since it is always read and
// written as a whole unit.
type Release struct {
	BaseModel
	AppID          string            `gorm:"uniqueIndex:idx_release_tuple;not null"`
	ClusterName    string            `gorm:"uniqueIndex:idx_release_tuple;not null"`
	DataCenter     string            `gorm:"uniqueIndex:idx_release_tuple"`
	NamespaceName  string            `gorm:"uniqueIndex:idx_release_tuple;not null"`
	ReleaseKey     string            `gorm:"not null"`
	Configurations map[string]string `gorm:"serializer:json"`
}

func NewSchemaRelease(r *domain.Release) *Release {
	return &Release{
		AppID:          r.AppID,
		ClusterName:    r.ClusterName,
		DataCenter:     r.DataCenter,
		NamespaceName:  r.NamespaceName,
		ReleaseKey:     r.ReleaseKey,
		Configurations: r.Configurations,
	}
}

func (r *Release) EtoD() *domain.Release {
	return &domain.Release{
		AppID:          r.AppID,
		ClusterName:    r.ClusterName,
		DataCenter:     r.DataCenter,
		NamespaceName:  r.NamespaceName,
		ReleaseKey:     r.ReleaseKey,
		Configurations: r.Configurations,
	}
}
