// ============================================================================
// Prometheus metrics for the collision controller and the page store.
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the process-wide Prometheus metrics registry.
type Collector struct {
	// Collision controller gauges.
	runningJobs       prometheus.Gauge
	waitingJobs       prometheus.Gauge
	heldJobs          prometheus.Gauge
	stealReqsCurrent  prometheus.Gauge
	jobsStolenTotal   prometheus.Counter
	jobsActivated     prometheus.Counter
	jobsRejected      prometheus.Counter
	stealReqsSent     prometheus.Counter
	stealReqsReceived prometheus.Counter

	// Page store counters.
	pagesAllocated  prometheus.Counter
	pageReadErrors  prometheus.Counter
	pageWriteErrors prometheus.Counter
}

// NewCollector constructs and registers the full metric set.
func NewCollector() *Collector {
	c := &Collector{
		runningJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collision_running_jobs",
			Help: "Current number of active jobs reported in the last collision pass",
		}),
		waitingJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collision_waiting_jobs",
			Help: "Current number of waiting jobs reported in the last collision pass",
		}),
		heldJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collision_held_jobs",
			Help: "Current number of held jobs reported in the last collision pass",
		}),
		stealReqsCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collision_steal_requests_current",
			Help: "Current pending inbound steal capacity (may transiently read negative)",
		}),
		jobsStolenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collision_jobs_stolen_total",
			Help: "Total number of local jobs surrendered to a thief peer",
		}),
		jobsActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collision_jobs_activated_total",
			Help: "Total number of waiting jobs activated",
		}),
		jobsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collision_jobs_rejected_total",
			Help: "Total number of waiting jobs rejected (cancelled in favor of a thief)",
		}),
		stealReqsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collision_steal_requests_sent_total",
			Help: "Total number of outbound StealRequest messages sent",
		}),
		stealReqsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collision_steal_requests_received_total",
			Help: "Total number of inbound StealRequest messages processed",
		}),
		pagesAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagestore_pages_allocated_total",
			Help: "Total number of pages allocated across all page files",
		}),
		pageReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagestore_read_errors_total",
			Help: "Total number of page reads that failed integrity verification",
		}),
		pageWriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pagestore_write_errors_total",
			Help: "Total number of page writes that failed",
		}),
	}

	prometheus.MustRegister(
		c.runningJobs, c.waitingJobs, c.heldJobs, c.stealReqsCurrent,
		c.jobsStolenTotal, c.jobsActivated, c.jobsRejected,
		c.stealReqsSent, c.stealReqsReceived,
		c.pagesAllocated, c.pageReadErrors, c.pageWriteErrors,
	)

	return c
}

// UpdateCollisionGauges sets the instantaneous job-population gauges.
func (c *Collector) UpdateCollisionGauges(running, waiting, held, stealReqsCurrent int) {
	c.runningJobs.Set(float64(running))
	c.waitingJobs.Set(float64(waiting))
	c.heldJobs.Set(float64(held))
	c.stealReqsCurrent.Set(float64(stealReqsCurrent))
}

func (c *Collector) RecordJobsStolen(n int)    { c.jobsStolenTotal.Add(float64(n)) }
func (c *Collector) RecordJobActivated()       { c.jobsActivated.Inc() }
func (c *Collector) RecordJobRejected()        { c.jobsRejected.Inc() }
func (c *Collector) RecordStealRequestSent()   { c.stealReqsSent.Inc() }
func (c *Collector) RecordStealRequestRecv()   { c.stealReqsReceived.Inc() }
func (c *Collector) RecordPageAllocated()      { c.pagesAllocated.Inc() }
func (c *Collector) RecordPageReadError()      { c.pageReadErrors.Inc() }
func (c *Collector) RecordPageWriteError()     { c.pageWriteErrors.Inc() }

// StartServer starts the Prometheus metrics HTTP endpoint.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
