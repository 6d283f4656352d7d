// ============================================================================
// Engine — the collision controller's decision core.
//
// OnCollision is the single entry point the compute runtime calls whenever
// the local job population changes. It runs checkBusy (activate waiting
// jobs up to budget, or surrender the lowest-value ones to peers asking for
// work) and, only if nothing was surrendered this pass, checkIdle (ask
// overloaded peers for work).
//
// Grounded line-for-line on GridJobStealingCollisionSpi.java's
// onCollision/checkBusy/checkIdle (original_source/modules/core).
// ============================================================================

package collision

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

// StealRequest is the one wire message this controller sends and receives.
// Despite its name, Delta is an absolute replacement of the sender's
// previously-advertised capacity, not an increment — see DESIGN.md's Open
// Question decision on this.
type StealRequest struct {
	Delta int32
}

// Transport is the narrow, external send contract the engine needs: one
// method to deliver a StealRequest to a peer on a topic. The actual
// inter-node transport is an external collaborator; internal/cluster
// supplies a concrete implementation.
type Transport interface {
	Send(to NodeID, topic string, msg StealRequest) error
}

// Engine is one node's collision controller instance.
type Engine struct {
	cfg       Config
	table     *NodeTable
	transport Transport
	self      NodeID

	stealReqs          atomic.Int64
	totalStolenJobsNum atomic.Int64
	runningNum         atomic.Int64
	waitingNum         atomic.Int64
	heldNum            atomic.Int64

	stealRequestsSent     atomic.Int64
	stealRequestsReceived atomic.Int64
	jobsActivated         atomic.Int64
	jobsRejected          atomic.Int64

	// onStealCapacityChanged is the external collision listener notified
	// whenever an inbound StealRequest changes this node's steal capacity.
	// Nil is a valid no-op.
	onStealCapacityChanged func()

	metrics MetricsSink
}

// MetricsSink is the narrow observability contract the engine reports
// through; internal/metrics.Collector implements it. Nil is valid — all
// call sites guard with a nil check.
type MetricsSink interface {
	UpdateCollisionGauges(running, waiting, held, stealReqsCurrent int)
	RecordJobsStolen(n int)
	RecordJobActivated()
	RecordJobRejected()
	RecordStealRequestSent()
	RecordStealRequestRecv()
}

// SetMetrics attaches an observability sink. Optional.
func (e *Engine) SetMetrics(m MetricsSink) {
	e.metrics = m
}

// NewEngine constructs an Engine bound to table and transport. cfg is
// validated; an invalid configuration is a fatal start-up error, not a
// degraded-mode fallback.
func NewEngine(cfg Config, table *NodeTable, transport Transport, self NodeID) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		table:     table,
		transport: transport,
		self:      self,
	}, nil
}

// Snapshot is a read-only view of the engine's counters, useful for CLI
// inspection and tests without reaching into unexported atomics.
type Snapshot struct {
	StealReqs             int64
	TotalStolenJobs       int64
	Running               int64
	Waiting               int64
	Held                  int64
	StealRequestsSent     int64
	StealRequestsReceived int64
	JobsActivated         int64
	JobsRejected          int64
}

// Snapshot returns the engine's current counters.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		StealReqs:             e.stealReqs.Load(),
		TotalStolenJobs:       e.totalStolenJobsNum.Load(),
		Running:               e.runningNum.Load(),
		Waiting:               e.waitingNum.Load(),
		Held:                  e.heldNum.Load(),
		StealRequestsSent:     e.stealRequestsSent.Load(),
		StealRequestsReceived: e.stealRequestsReceived.Load(),
		JobsActivated:         e.jobsActivated.Load(),
		JobsRejected:          e.jobsRejected.Load(),
	}
}

// OnStealCapacityChanged registers the external collision listener invoked
// after an inbound StealRequest updates global steal capacity.
func (e *Engine) OnStealCapacityChanged(fn func()) {
	e.onStealCapacityChanged = fn
}

// OnCollision runs one decision pass, mirroring
// GridJobStealingCollisionSpi.onCollision. It has no return value; all
// effects are activate()/cancel() calls on waiting jobs, sent
// StealRequests, and counter updates.
func (e *Engine) OnCollision(ctx CollisionContext) {
	e.runningNum.Store(int64(len(ctx.Active)))
	e.waitingNum.Store(int64(len(ctx.Waiting)))
	e.heldNum.Store(int64(len(ctx.Held)))

	rejected := e.checkBusy(ctx.Waiting, ctx.Active)
	e.totalStolenJobsNum.Add(int64(rejected))

	if e.metrics != nil {
		e.metrics.UpdateCollisionGauges(len(ctx.Active), len(ctx.Waiting), len(ctx.Held), int(e.stealReqs.Load()))
		if rejected > 0 {
			e.metrics.RecordJobsStolen(rejected)
		}
	}

	if rejected > 0 {
		return
	}
	if e.cfg.StealingEnabled {
		e.checkIdle(ctx.Waiting, ctx.Active)
	}
}

// checkBusy fills the activation budget from the highest-priority waiting
// jobs, then — if the budget is exhausted and peers have asked for work —
// surrenders the lowest-value remaining waiting jobs to them. Grounded on
// GridJobStealingCollisionSpi.checkBusy.
func (e *Engine) checkBusy(waiting, active []CollisionJobContext) int {
	waitPri := sortByPriorityDesc(waiting)
	activeCount := len(active)
	activated := 0
	rejected := 0

	for _, w := range waitPri {
		if activeCount < e.cfg.ActiveJobsThreshold {
			w.Activate()
			activeCount++
			activated++
			e.jobsActivated.Add(1)
			if e.metrics != nil {
				e.metrics.RecordJobActivated()
			}
			continue
		}

		if e.stealReqs.Load() <= 0 {
			break
		}

		if w.Job().StealingDisabled {
			continue
		}

		attrs := w.Attributes()
		attrs.Lock()
		attemptVal, _ := attrs.Get(StealingAttemptCountAttr)
		attrs.Unlock()
		attempt, _ := attemptVal.(int)
		if attempt >= e.cfg.MaxStealingAttempts {
			continue
		}

		jobsToReject := len(waitPri) - activated - rejected - e.cfg.WaitJobsThreshold
		if jobsToReject <= 0 {
			break
		}

		pri := priority(w)

		if e.tryRejectOneTo(w, attempt, pri) {
			rejected++
		}
	}

	return rejected
}

// tryRejectOneTo iterates a snapshot of inbound MessageInfo looking for a
// peer this job is permitted to run on and that still has steal capacity
// outstanding; on a match it assigns w to that peer and cancels it. It
// returns whether the cancellation succeeded and counted as a rejection.
func (e *Engine) tryRejectOneTo(w CollisionJobContext, attempt, pri int) bool {
	topology := w.TaskSession().Topology()

	for nodeID, info := range e.table.RcvSnapshot() {
		if e.stealReqs.Load() <= 0 {
			return false
		}
		if !e.table.IsLive(nodeID) {
			continue
		}

		info.Lock()
		if info.JobsToSteal() == 0 {
			info.Unlock()
			continue
		}
		if info.Expired(e.cfg.MsgExpireTime) {
			e.stealReqs.Add(-int64(info.JobsToSteal()))
			info.Reset(0)
			info.Unlock()
			continue
		}
		if _, ok := topology[nodeID]; !ok {
			info.Unlock()
			continue
		}
		if e.stealReqs.Load() <= 0 {
			info.Unlock()
			return false
		}

		accepted := e.assignThief(w, nodeID, attempt, pri)
		if accepted {
			info.Reset(info.JobsToSteal() - 1)
		}
		info.Unlock()
		return accepted
	}
	return false
}

// assignThief performs the single synchronized-on-jobContext critical
// section: write the thief/attempt/priority attributes, speculatively
// decrement stealReqs, and cancel the job. A failed cancel (or a stealReqs
// value that had already gone negative before this decrement) rolls the
// attributes and counter back.
func (e *Engine) assignThief(w CollisionJobContext, nodeID NodeID, attempt, pri int) bool {
	attrs := w.Attributes()
	attrs.Lock()
	defer attrs.Unlock()

	if _, present := attrs.Get(ThiefNodeAttr); present {
		return false
	}

	oldAttempt, hadAttempt := attrs.Get(StealingAttemptCountAttr)
	oldPriority, hadPriority := attrs.Get(StealingPriorityAttr)

	attrs.Set(ThiefNodeAttr, nodeID)
	attrs.Set(StealingAttemptCountAttr, attempt+1)
	attrs.Set(StealingPriorityAttr, pri+1)

	preDecrement := e.stealReqs.Load()
	e.stealReqs.Add(-1)

	if w.Cancel() && preDecrement >= 0 {
		e.jobsRejected.Add(1)
		if e.metrics != nil {
			e.metrics.RecordJobRejected()
		}
		return true
	}

	// Roll back: the cancel failed, or stealReqs had already gone
	// negative before this decrement — undo both the attribute writes
	// and the speculative decrement.
	attrs.Delete(ThiefNodeAttr)
	if hadAttempt {
		attrs.Set(StealingAttemptCountAttr, oldAttempt)
	} else {
		attrs.Delete(StealingAttemptCountAttr)
	}
	if hadPriority {
		attrs.Set(StealingPriorityAttr, oldPriority)
	} else {
		attrs.Delete(StealingPriorityAttr)
	}
	e.stealReqs.Add(1)
	return false
}

// checkIdle requests work from overloaded peers when the local queues are
// short. Grounded on GridJobStealingCollisionSpi.checkIdle.
func (e *Engine) checkIdle(waiting, active []CollisionJobContext) {
	max := e.cfg.WaitJobsThreshold + e.cfg.ActiveJobsThreshold
	jobsToSteal := max - (len(waiting) + len(active))
	if jobsToSteal <= 0 {
		return
	}

	jobsLeft := jobsToSteal
	nodeCnt := e.table.RemoteCount()

	for i := 0; i < nodeCnt && jobsLeft > 0; i++ {
		next, ok := e.table.PopFront()
		if !ok {
			break
		}

		stillLive := e.table.IsLive(next)
		if stillLive {
			jobsLeft = e.pollPeer(next, jobsLeft)
			e.table.PushBack(next)
		}
	}
}

// pollPeer evaluates a single peer during checkIdle's round-robin sweep
// and sends at most one StealRequest to it.
func (e *Engine) pollPeer(next NodeID, jobsLeft int) int {
	node, ok := e.table.Node(next)
	if !ok {
		return jobsLeft
	}

	attrs := node.Attributes()
	for k, v := range e.cfg.StealingAttributes {
		if attrs[k] != v {
			slog.Debug("collision: peer missing required steal attribute", "peer", next, "key", k)
			return jobsLeft
		}
	}

	snd, ok := e.table.Snd(next)
	if !ok {
		return jobsLeft
	}

	waitThresholdStr, ok := attrs[WaitJobsThresholdNodeAttr]
	if !ok {
		slog.Error("collision: peer does not advertise wait-jobs-threshold, skipping", "peer", next)
		return jobsLeft
	}
	waitThreshold, err := strconv.Atoi(waitThresholdStr)
	if err != nil {
		slog.Error("collision: peer wait-jobs-threshold attribute is not an integer", "peer", next, "value", waitThresholdStr)
		return jobsLeft
	}

	delta := node.Metrics().CurrentWaitingJobs - waitThreshold
	if delta <= 0 {
		return jobsLeft
	}

	snd.Lock()
	if !snd.Expired(e.cfg.MsgExpireTime) && snd.JobsToSteal() > 0 {
		jobsLeft -= snd.JobsToSteal()
		snd.Unlock()
		return jobsLeft
	}
	if delta > jobsLeft {
		delta = jobsLeft
	}
	jobsLeft -= delta
	snd.Reset(delta)
	snd.Unlock()

	if err := e.transport.Send(next, StealingTopic, StealRequest{Delta: int32(delta)}); err != nil {
		slog.Warn("collision: failed to send steal request, rolling back", "peer", next, "error", err)
		jobsLeft += delta
		return jobsLeft
	}

	e.stealRequestsSent.Add(1)
	if e.metrics != nil {
		e.metrics.RecordStealRequestSent()
	}
	return jobsLeft
}
