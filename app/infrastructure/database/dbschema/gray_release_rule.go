package dbschema

import (
	domain "github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(GrayReleaseRule{})
}

// GrayReleaseRule is a per-client override: a client matching ClientIP or
// ClientLabel for (AppID, NamespaceName) gets a personalized resolution
// instead of the shared release.
type GrayReleaseRule struct {
	BaseModel
	AppID         string `gorm:"index:idx_gray_rule_lookup;not null"`
	NamespaceName string `gorm:"index:idx_gray_rule_lookup;not null"`
	ClientIP      string `gorm:"index"`
	ClientLabel   string `gorm:"index"`
}

func NewSchemaGrayReleaseRule(r *domain.GrayReleaseRule) *GrayReleaseRule {
	return &GrayReleaseRule{
		AppID:         r.AppID,
		NamespaceName: r.NamespaceName,
		ClientIP:      r.ClientIP,
		ClientLabel:   r.ClientLabel,
	}
}

func (r *GrayReleaseRule) EtoD() *domain.GrayReleaseRule {
	return &domain.GrayReleaseRule{
		AppID:         r.AppID,
		NamespaceName: r.NamespaceName,
		ClientIP:      r.ClientIP,
		ClientLabel:   r.ClientLabel,
	}
}
