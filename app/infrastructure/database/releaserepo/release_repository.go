// Package releaserepo implements the Release Store (C7): the Postgres-
// backed source of truth the Namespace Index, Gray Release Rule Holder and
// Query Pipeline all read through.
package releaserepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/infrastructure/database/dbschema"
)

// GormRepository is the gorm-backed implementation of release.ConfigResolver
// plus the listing methods the C8/C9 refresh loaders poll on a schedule.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// HealthCheck verifies the underlying database connection is reachable,
// backing the /health-check route.
func (r *GormRepository) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// QueryConfig implements release.ConfigResolver. A release on dataCenter is
// preferred when present; otherwise the cluster-wide release is used; if
// the requested cluster has no release at all, the default cluster's
// release is returned instead, matching the watch-key fallback chain in
// app/domain/configfile.
func (r *GormRepository) QueryConfig(ctx context.Context, appID, cluster, namespace, dataCenter string) (*domain.Release, error) {
	for _, candidateCluster := range []string{cluster, "default"} {
		release, err := r.findRelease(ctx, appID, candidateCluster, namespace, dataCenter)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		return release, nil
	}
	return nil, domain.ErrReleaseNotFound
}

func (r *GormRepository) findRelease(ctx context.Context, appID, cluster, namespace, dataCenter string) (*domain.Release, error) {
	var model dbschema.Release
	q := r.db.WithContext(ctx).
		Where("app_id = ? AND cluster_name = ? AND namespace_name = ?", appID, cluster, namespace)
	if dataCenter != "" {
		withDC := q.Session(&gorm.Session{}).Where("data_center = ?", dataCenter)
		if err := withDC.First(&model).Error; err == nil {
			return model.EtoD(), nil
		}
	}
	if err := q.Where("data_center = ?", "").First(&model).Error; err != nil {
		return nil, err
	}
	return model.EtoD(), nil
}

// Upsert writes a release, replacing any existing row for the same
// (appId, cluster, namespace, dataCenter) tuple. Used by the admin publish
// route (C10).
func (r *GormRepository) Upsert(ctx context.Context, release *domain.Release) error {
	model := dbschema.NewSchemaRelease(release)
	var existing dbschema.Release
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND cluster_name = ? AND namespace_name = ? AND data_center = ?",
			release.AppID, release.ClusterName, release.NamespaceName, release.DataCenter).
		First(&existing).Error
	switch {
	case err == nil:
		model.ID = existing.ID
		return r.db.WithContext(ctx).Save(model).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(model).Error
	default:
		return err
	}
}

// ListNamespaces returns every distinct namespace known for appID, backing
// the Namespace Index (C8) refresh.
func (r *GormRepository) ListNamespaces(ctx context.Context, appID string) ([]*domain.Namespace, error) {
	var models []dbschema.Namespace
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*domain.Namespace, 0, len(models))
	for _, m := range models {
		result = append(result, m.EtoD())
	}
	return result, nil
}

// ListGrayReleaseRules returns every gray-release rule known for appID,
// backing the Gray Release Rule Holder (C9) refresh.
func (r *GormRepository) ListGrayReleaseRules(ctx context.Context, appID string) ([]*domain.GrayReleaseRule, error) {
	var models []dbschema.GrayReleaseRule
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*domain.GrayReleaseRule, 0, len(models))
	for _, m := range models {
		result = append(result, m.EtoD())
	}
	return result, nil
}

// ListAppIDs returns every distinct application id that has at least one
// release, so the refresh loaders know which applications to poll.
func (r *GormRepository) ListAppIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&dbschema.Release{}).Distinct().Pluck("app_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
