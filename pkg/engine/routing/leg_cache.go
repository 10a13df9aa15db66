package routing

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	da "github.com/lintang-b-s/navigatorx-waypoints/pkg/datastructure"
)

// Policy is the global routing policy a leg was computed under.
type Policy struct {
	Heuristic     HeuristicType
	UseRestricted bool
}

type legCacheKey struct {
	route  da.RouteKey
	policy Policy
	epoch  uint64
}

// LegCache is an lru of computed legs shared by point-to-point tasks and distance table builds.
// Invalidate bumps an epoch, so entries added by a superseded worker after the purge are never served.
type LegCache struct {
	cache *lru.Cache[legCacheKey, da.RouteResult]
	epoch atomic.Uint64
}

func NewLegCache(size int) (*LegCache, error) {
	cache, err := lru.New[legCacheKey, da.RouteResult](size)
	if err != nil {
		return nil, err
	}
	return &LegCache{cache: cache}, nil
}

func (lc *LegCache) Invalidate() {
	lc.epoch.Add(1)
	lc.cache.Purge()
}

func (lc *LegCache) Len() int {
	return lc.cache.Len()
}

// View pins the current epoch and policy.
func (lc *LegCache) View(policy Policy) *LegCacheView {
	return &LegCacheView{lc: lc, policy: policy, epoch: lc.epoch.Load()}
}

type LegCacheView struct {
	lc     *LegCache
	policy Policy
	epoch  uint64
}

func (v *LegCacheView) key(k da.RouteKey) legCacheKey {
	return legCacheKey{route: k, policy: v.policy, epoch: v.epoch}
}

func (v *LegCacheView) Get(k da.RouteKey) (da.RouteResult, bool) {
	if v == nil {
		return da.RouteResult{}, false
	}
	return v.lc.cache.Get(v.key(k))
}

// Add stores res only if a route was found. an unreachable result may come from an interactive
// search that hit its expansion ceiling, so it is not reused.
func (v *LegCacheView) Add(res da.RouteResult) {
	if v == nil || !res.Found() {
		return
	}
	v.lc.cache.Add(v.key(res.Key()), res)
}
