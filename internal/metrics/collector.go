// Package metrics exposes the satellite's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "satellite"

// Collector groups all satellite metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	messagesReceived *prometheus.CounterVec
	messagesSent     *prometheus.CounterVec
	connections      prometheus.Counter
	protocolErrors   prometheus.Counter
	connected        prometheus.Gauge

	wakeDetections     *prometheus.CounterVec
	suppressedWakes    prometheus.Counter
	modelLoadFailures  *prometheus.CounterVec
	droppedAudioFrames prometheus.Counter

	pipelineRuns  *prometheus.CounterVec
	announcements prometheus.Counter
	state         *prometheus.GaugeVec
	activeTimers  prometheus.Gauge

	logger *zap.Logger
}

// NewCollector creates a collector backed by its own registry, which also
// carries the Go runtime and process collectors.
func NewCollector(logger *zap.Logger) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.messagesReceived = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_messages_received_total",
			Help:      "Native API messages received from the hub",
		},
		[]string{"type"},
	)

	c.messagesSent = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_messages_sent_total",
			Help:      "Native API messages sent to the hub",
		},
		[]string{"type"},
	)

	c.connections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_connections_total",
		Help:      "Accepted hub connections",
	})

	c.protocolErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_protocol_errors_total",
		Help:      "Connections dropped because of a malformed frame",
	})

	c.connected = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "api_connected",
		Help:      "1 while a hub is connected",
	})

	c.wakeDetections = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Wake and stop word detections",
		},
		[]string{"kind", "model"},
	)

	c.suppressedWakes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suppressed_wakes_total",
		Help:      "Wake detections ignored because the satellite was already listening",
	})

	c.modelLoadFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_load_failures_total",
			Help:      "Wake word models that could not be loaded",
		},
		[]string{"model"},
	)

	c.droppedAudioFrames = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_audio_frames_total",
		Help:      "Microphone frames dropped because the consumer fell behind",
	})

	c.pipelineRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Voice pipeline runs by origin",
		},
		[]string{"origin"},
	)

	c.announcements = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "announcements_total",
		Help:      "Announcements played",
	})

	c.state = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the current satellite state, 0 for the others",
		},
		[]string{"state"},
	)

	c.activeTimers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "timers",
		Help:      "Timers currently tracked",
	})

	c.logger.Debug("metrics collector initialized")
	return c
}

// Gatherer returns the registry to expose over HTTP.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

func (c *Collector) MessageReceived(msgType string) {
	if c == nil {
		return
	}
	c.messagesReceived.WithLabelValues(msgType).Inc()
}

func (c *Collector) MessageSent(msgType string) {
	if c == nil {
		return
	}
	c.messagesSent.WithLabelValues(msgType).Inc()
}

func (c *Collector) ConnectionAccepted() {
	if c == nil {
		return
	}
	c.connections.Inc()
}

func (c *Collector) ProtocolError() {
	if c == nil {
		return
	}
	c.protocolErrors.Inc()
}

func (c *Collector) SetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.connected.Set(1)
	} else {
		c.connected.Set(0)
	}
}

// Detection records a wake ("wake") or stop ("stop") detection.
func (c *Collector) Detection(kind, model string) {
	if c == nil {
		return
	}
	c.wakeDetections.WithLabelValues(kind, model).Inc()
}

func (c *Collector) WakeSuppressed() {
	if c == nil {
		return
	}
	c.suppressedWakes.Inc()
}

func (c *Collector) ModelLoadFailed(model string) {
	if c == nil {
		return
	}
	c.modelLoadFailures.WithLabelValues(model).Inc()
}

func (c *Collector) AudioFrameDropped() {
	if c == nil {
		return
	}
	c.droppedAudioFrames.Inc()
}

// PipelineStarted records a run started locally ("wake", "conversation",
// "announcement") or by the hub ("hub").
func (c *Collector) PipelineStarted(origin string) {
	if c == nil {
		return
	}
	c.pipelineRuns.WithLabelValues(origin).Inc()
}

func (c *Collector) AnnouncementStarted() {
	if c == nil {
		return
	}
	c.announcements.Inc()
}

// SetState marks current as the only active state among all.
func (c *Collector) SetState(current string, all []string) {
	if c == nil {
		return
	}
	for _, s := range all {
		if s == current {
			c.state.WithLabelValues(s).Set(1)
		} else {
			c.state.WithLabelValues(s).Set(0)
		}
	}
}

func (c *Collector) SetTimers(n int) {
	if c == nil {
		return
	}
	c.activeTimers.Set(float64(n))
}
