// Package metrics exposes a node's SchedulingResources over Prometheus and
// a plain-text /debug endpoint, grounded on the teacher's
// basePrometheusManager pattern: a gin.Engine behind an http.Server,
// registering a fixed set of prometheus.GaugeVec/CounterVec instruments.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	cors "github.com/gin-gonic/contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scusemua/resource-accountant/common/utils/hashmap"
)

// eventCountShards is the shard count passed to hashmap.NewConcurrentMap.
// The registry is keyed by resource name, of which a node has at most a
// handful, so sharding matters far less here than contention avoidance on
// a hot counter.
const eventCountShards = 8

const resourceStatusLabel = "resource"

// DebugStringer is satisfied by resource.SchedulingResources; kept as an
// interface so this package does not need to know how the debug string was
// produced.
type DebugStringer interface {
	DebugString() string
}

// Manager serves Prometheus metrics and a /debug endpoint for a single
// node's SchedulingResources, mirroring the teacher's
// basePrometheusManager: a gin.Engine wrapped in an http.Server, started
// and stopped explicitly by the owner.
type Manager struct {
	log logger.Logger

	nodeID string
	port   int

	totalGaugeVec     *prometheus.GaugeVec
	availableGaugeVec *prometheus.GaugeVec
	loadGaugeVec      *prometheus.GaugeVec

	capacityUpdateCounterVec *prometheus.CounterVec
	addResourceCounterVec    *prometheus.CounterVec
	deleteResourceCounterVec *prometheus.CounterVec
	backlogShrinkCounterVec  *prometheus.CounterVec

	// eventCounts is a concurrent, per-resource-name tally of resize events
	// independent of the Prometheus registry, available to the /debug
	// endpoint without a scrape round-trip.
	eventCounts *hashmap.ConcurrentMap[string, int64]

	resources DebugStringer

	engine     *gin.Engine
	httpServer *http.Server
	running    bool
}

// NewManager constructs a Manager for the given node, serving on port and
// rendering resources's debug string at /debug.
func NewManager(nodeID string, port int, resources DebugStringer) *Manager {
	m := &Manager{
		nodeID:      nodeID,
		port:        port,
		resources:   resources,
		eventCounts: hashmap.NewConcurrentMap[int64](eventCountShards),
	}

	config.InitLogger(&m.log, m)

	m.totalGaugeVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "accountant_total_resource",
		Help: "Declared total capacity of a resource on this node.",
	}, []string{resourceStatusLabel, "node_id"})

	m.availableGaugeVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "accountant_available_resource",
		Help: "Currently-unallocated capacity of a resource on this node.",
	}, []string{resourceStatusLabel, "node_id"})

	m.loadGaugeVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "accountant_load_resource",
		Help: "Observed demand signal for a resource on this node.",
	}, []string{resourceStatusLabel, "node_id"})

	m.capacityUpdateCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accountant_capacity_update_total",
		Help: "Number of UpdateResourceCapacity calls observed for a resource.",
	}, []string{resourceStatusLabel, "node_id"})

	m.addResourceCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accountant_add_resource_total",
		Help: "Number of AddResource calls observed for a resource.",
	}, []string{resourceStatusLabel, "node_id"})

	m.deleteResourceCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accountant_delete_resource_total",
		Help: "Number of DeleteResource calls observed for a resource.",
	}, []string{resourceStatusLabel, "node_id"})

	m.backlogShrinkCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accountant_backlog_creating_shrink_total",
		Help: "Number of capacity decreases that created or grew a decrement backlog.",
	}, []string{resourceStatusLabel, "node_id"})

	return m
}

// IsRunning reports whether the HTTP server has been started.
func (m *Manager) IsRunning() bool {
	return m.running
}

// NodeID returns the id of the node this Manager is reporting for.
func (m *Manager) NodeID() string {
	return m.nodeID
}

// ObserveCapacityUpdate records a capacity-update event for name, and, if
// the update grew a decrement backlog, also counts it against the backlog
// counter.
func (m *Manager) ObserveCapacityUpdate(name string, createdBacklog bool) {
	m.capacityUpdateCounterVec.WithLabelValues(name, m.nodeID).Inc()
	m.incrementEventCount(name)

	if createdBacklog {
		m.backlogShrinkCounterVec.WithLabelValues(name, m.nodeID).Inc()
	}
}

// ObserveAddResource records an AddResource event for name.
func (m *Manager) ObserveAddResource(name string) {
	m.addResourceCounterVec.WithLabelValues(name, m.nodeID).Inc()
	m.incrementEventCount(name)
}

// ObserveDeleteResource records a DeleteResource event for name.
func (m *Manager) ObserveDeleteResource(name string) {
	m.deleteResourceCounterVec.WithLabelValues(name, m.nodeID).Inc()
	m.incrementEventCount(name)
}

// EventCount returns the number of resize-family events observed for name
// since this Manager was created.
func (m *Manager) EventCount(name string) int64 {
	count, _ := m.eventCounts.Load(name)
	return count
}

// incrementEventCount adds one to the tally for name, retrying the
// compare-and-swap on contention since ConcurrentMap exposes no direct
// upsert-with-function primitive.
func (m *Manager) incrementEventCount(name string) {
	for {
		current, _ := m.eventCounts.Load(name)
		if _, swapped := m.eventCounts.CompareAndSwap(name, current, current+1); swapped {
			return
		}
	}
}

// PublishSnapshot pushes the current quantities in total/available/load
// into the gauge vectors. The caller decides when a publish is due (e.g.
// on an interval, per AccountantOptions.PrometheusInterval).
func (m *Manager) PublishSnapshot(total, available, load map[string]float64) {
	for name, qty := range total {
		m.totalGaugeVec.WithLabelValues(name, m.nodeID).Set(qty)
	}
	for name, qty := range available {
		m.availableGaugeVec.WithLabelValues(name, m.nodeID).Set(qty)
	}
	for name, qty := range load {
		m.loadGaugeVec.WithLabelValues(name, m.nodeID).Set(qty)
	}
}

// Start registers the gauge/counter vectors and begins serving /metrics and
// /debug on m.port.
func (m *Manager) Start() error {
	prometheus.MustRegister(
		m.totalGaugeVec,
		m.availableGaugeVec,
		m.loadGaugeVec,
		m.capacityUpdateCounterVec,
		m.addResourceCounterVec,
		m.deleteResourceCounterVec,
		m.backlogShrinkCounterVec,
	)

	return m.initializeHTTPServer()
}

// Stop gracefully shuts down the HTTP server.
func (m *Manager) Stop() error {
	if m.httpServer == nil {
		return nil
	}

	m.running = false
	return m.httpServer.Shutdown(context.Background())
}

func (m *Manager) initializeHTTPServer() error {
	gin.SetMode(gin.ReleaseMode)

	m.engine = gin.New()
	m.engine.Use(gin.Recovery())
	m.engine.Use(cors.Default())

	m.engine.GET("/metrics", m.handlePrometheusScrape)
	m.engine.GET("/debug", m.handleDebug)

	m.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", m.port),
		Handler: m.engine,
	}

	go func() {
		m.running = true
		if err := m.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Error("metrics HTTP server on node %s failed: %v", m.nodeID, err)
		}
	}()

	return nil
}

func (m *Manager) handlePrometheusScrape(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

func (m *Manager) handleDebug(c *gin.Context) {
	c.String(http.StatusOK, m.resources.DebugString())
}
