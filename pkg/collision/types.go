// ============================================================================
// Package collision implements the job-stealing collision controller: a
// per-node policy engine that decides which waiting jobs to admit, which to
// surrender to peers asking for work, and how many jobs to request from
// overloaded peers.
//
// Grounded on org.gridgain...GridJobStealingCollisionSpi
// (original_source/modules/core), carried into Go with per-struct mutexes
// in place of Java intrinsic locks and atomic.Int64 in place of
// AtomicInteger.
// ============================================================================

package collision

import "github.com/google/uuid"

// NodeID identifies a cluster peer. The original source keys peers by
// java.util.UUID; github.com/google/uuid is the direct Go analogue.
type NodeID = uuid.UUID

// Attribute keys set on a job's context so a failed-over job context
// carries its stealing history: which node it was handed to, how many
// attempts it has made, and at what priority.
const (
	ThiefNodeAttr            = "gridgain.collision.thief.node"
	StealingAttemptCountAttr = "gridgain.stealing.attempt.count"
	StealingPriorityAttr     = "gridgain.stealing.priority"
)

// Published peer attribute keys advertised by discovery so a remote node
// can evaluate whether this node is a good steal target without a round
// trip.
const (
	WaitJobsThresholdNodeAttr   = "gridgain.collision.wait.jobs.threshold"
	ActiveJobsThresholdNodeAttr = "gridgain.collision.active.jobs.threshold"
	MaxStealingAttemptNodeAttr  = "gridgain.stealing.max.attempts"
	MsgExpireTimeNodeAttr       = "gridgain.stealing.msg.expire.time"
)

// StealingTopic is the single message topic this controller communicates
// on.
const StealingTopic = "gridgain.collision.job.stealing.topic"

// JobInfo carries the static facts about a job that the comparator and the
// StealingDisabled check need. The execution engine that actually runs the
// job is an external collaborator; this core only inspects these facts.
type JobInfo struct {
	StealingDisabled bool
}

// TaskSession exposes the subset of the distributed task session the
// engine consults: which nodes are permitted to execute this task.
type TaskSession interface {
	Topology() map[NodeID]struct{}
}

// CollisionJobContext is the consumed handle over a single waiting or
// active job. It is implemented by the external job execution engine;
// this package only calls these methods.
type CollisionJobContext interface {
	// Attributes returns the job's mutable attribute map. Callers must
	// hold Lock/Unlock around any read-modify-write sequence touching
	// ThiefNodeAttr, StealingAttemptCountAttr, or StealingPriorityAttr,
	// mirroring the Java source's "synchronize on jobContext" discipline.
	Attributes() AttributeMap
	TaskSession() TaskSession
	Job() JobInfo

	// Activate marks the job as runnable now.
	Activate()
	// Cancel requests surrender of the job to a thief node. It returns
	// whether the cancellation actually took effect: a job that has
	// already started running, or that was already cancelled by another
	// caller, reports false.
	Cancel() bool
}

// AttributeMap is a job-context attribute store guarded by its own mutex,
// matching the Java source's "synchronized(jobCtx)" discipline around
// ThiefNodeAttr/StealingAttemptCountAttr/StealingPriorityAttr mutation.
type AttributeMap interface {
	Lock()
	Unlock()
	// Get returns the raw attribute value and whether it was present.
	// Callers must hold the lock.
	Get(key string) (any, bool)
	// Set stores an attribute value. Callers must hold the lock.
	Set(key string, value any)
	// Delete removes an attribute. Callers must hold the lock.
	Delete(key string)
}

// CollisionContext is the per-pass snapshot the engine is handed by the
// runtime: the current waiting, active, and held jobs.
type CollisionContext struct {
	Waiting []CollisionJobContext
	Active  []CollisionJobContext
	Held    []CollisionJobContext
}
