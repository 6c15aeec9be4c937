// Package grayrelease implements the Gray Release Rule Holder (C9): an
// in-process snapshot of every gray-release rule, refreshed from the
// Release Store on a schedule and mirrored into a distributed cache.
// HasGrayReleaseRule reads the mirror first, so a rule another instance
// picked up on its own refresh becomes visible here immediately instead of
// waiting for this instance's own schedule; the in-process snapshot is
// only a fallback for when the mirror is unset or unreachable.
package grayrelease

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mileusna/crontab"

	"github.com/relaycfg/configserver/app/domain/release"
	"github.com/relaycfg/configserver/app/infrastructure/cache"
	"github.com/relaycfg/configserver/app/utils/logger"
)

// RuleLister is the Release Store read side this holder polls.
type RuleLister interface {
	ListGrayReleaseRules(ctx context.Context, appID string) ([]*release.GrayReleaseRule, error)
	ListAppIDs(ctx context.Context) ([]string, error)
}

// Holder implements release.GrayReleaseRulesHolder against an in-process
// snapshot guarded by a mutex, refreshed on a crontab schedule.
type Holder struct {
	store     RuleLister
	mirror    cache.CacheService
	mirrorTTL time.Duration

	mu    sync.RWMutex
	rules map[string][]*release.GrayReleaseRule // appId -> rules
}

// New constructs a Holder with an empty snapshot. Call Refresh once before
// serving traffic so the snapshot isn't empty on the first requests.
func New(store RuleLister, mirror cache.CacheService, mirrorTTL time.Duration) *Holder {
	return &Holder{
		store:     store,
		mirror:    mirror,
		mirrorTTL: mirrorTTL,
		rules:     make(map[string][]*release.GrayReleaseRule),
	}
}

// HasGrayReleaseRule implements release.GrayReleaseRulesHolder.
func (h *Holder) HasGrayReleaseRule(ctx context.Context, appID, clientIP, clientLabel, namespace string) bool {
	for _, r := range h.lookupRules(ctx, appID) {
		if r.NamespaceName == namespace && r.Matches(clientIP, clientLabel) {
			return true
		}
	}
	return false
}

// lookupRules prefers the distributed mirror, which may carry a more
// recent refresh from another instance, and falls back to this instance's
// own snapshot when the mirror is unset or the read fails.
func (h *Holder) lookupRules(ctx context.Context, appID string) []*release.GrayReleaseRule {
	if h.mirror != nil {
		var mirrored []*release.GrayReleaseRule
		key := fmt.Sprintf(cache.GrayRuleSnapshotKeyPattern, appID)
		if err := h.mirror.Get(ctx, key, &mirrored); err == nil {
			return mirrored
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules[appID]
}

// Refresh reloads every application's rule set from the Release Store and
// mirrors each snapshot into the distributed cache.
func (h *Holder) Refresh(ctx context.Context) {
	appIDs, err := h.store.ListAppIDs(ctx)
	if err != nil {
		logger.GetLogger().Warnf("gray release rule holder: failed to list app ids: %v", err)
		return
	}

	for _, appID := range appIDs {
		rules, err := h.store.ListGrayReleaseRules(ctx, appID)
		if err != nil {
			logger.GetLogger().WithField("app_id", appID).Warnf("gray release rule holder: refresh failed: %v", err)
			continue
		}

		h.mu.Lock()
		h.rules[appID] = rules
		h.mu.Unlock()

		if h.mirror != nil {
			key := fmt.Sprintf(cache.GrayRuleSnapshotKeyPattern, appID)
			if err := h.mirror.Set(ctx, key, rules, h.mirrorTTL); err != nil {
				logger.GetLogger().WithField("app_id", appID).Warnf("gray release rule holder: mirror write failed: %v", err)
			}
		}
	}
}

// StartRefresh registers a crontab job that calls Refresh on schedule.
func (h *Holder) StartRefresh(ctx context.Context, ctab *crontab.Crontab, schedule string) error {
	h.Refresh(ctx)
	return ctab.AddJob(schedule, func() { h.Refresh(ctx) })
}
