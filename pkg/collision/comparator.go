package collision

import (
	"log/slog"
	"sort"
)

// priority reads the STEALING_PRIORITY_ATTR off a job context's attribute
// map. A missing attribute defaults to 0; an attribute present but not an
// integer is logged once and also treated as 0, matching
// GridJobStealingCollisionSpi.java's getJobPriority fault policy.
func priority(ctx CollisionJobContext) int {
	attrs := ctx.Attributes()
	attrs.Lock()
	defer attrs.Unlock()

	v, ok := attrs.Get(StealingPriorityAttr)
	if !ok {
		return 0
	}
	p, ok := v.(int)
	if !ok {
		slog.Warn("collision: STEALING_PRIORITY_ATTR is not an integer, defaulting to 0", "value", v)
		return 0
	}
	return p
}

// sortByPriorityDesc returns a stable-sorted copy of waiting jobs, highest
// priority first; ties keep their original relative order.
func sortByPriorityDesc(waiting []CollisionJobContext) []CollisionJobContext {
	out := make([]CollisionJobContext, len(waiting))
	copy(out, waiting)
	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i]) > priority(out[j])
	})
	return out
}
