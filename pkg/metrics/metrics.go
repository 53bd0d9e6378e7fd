// Package metrics provides Prometheus instrumentation for the wire codec.
// Codec implements protocol.Observer; attach it to a FrameDecoder or
// FrameEncoder to count frames, bytes, and decode errors per connection
// pool or per process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cqlkit/cqlwire/pkg/protocol"
)

// Config configures the codec metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "cqlwire").
	Namespace string

	// Subsystem is the metrics subsystem (default: "codec").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures the codec metrics.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) { c.ConstLabels = labels }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = registry }
}

func defaultConfig() Config {
	return Config{
		Namespace: "cqlwire",
		Subsystem: "codec",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Codec counts codec activity. It satisfies protocol.Observer.
type Codec struct {
	framesDecoded    *prometheus.CounterVec
	framesEncoded    *prometheus.CounterVec
	bytesIn          prometheus.Counter
	bytesOut         prometheus.Counter
	compressedFrames prometheus.Counter
	decodeErrors     prometheus.Counter
}

var _ protocol.Observer = (*Codec)(nil)

// NewCodec registers and returns the codec metrics.
func NewCodec(opts ...Option) *Codec {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Codec{
		framesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_decoded_total",
			Help:        "Response frames decoded, by opcode.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"opcode"}),
		framesEncoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_encoded_total",
			Help:        "Request frames encoded, by opcode.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"opcode"}),
		bytesIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "body_bytes_in_total",
			Help:        "On-wire response body bytes decoded.",
			ConstLabels: cfg.ConstLabels,
		}),
		bytesOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "body_bytes_out_total",
			Help:        "On-wire request body bytes encoded.",
			ConstLabels: cfg.ConstLabels,
		}),
		compressedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "compressed_frames_total",
			Help:        "Frames carried with a compressed body, both directions.",
			ConstLabels: cfg.ConstLabels,
		}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "decode_errors_total",
			Help:        "Frames that failed decoding.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// FrameDecoded implements protocol.Observer.
func (c *Codec) FrameDecoded(op protocol.Opcode, bodyLen int, compressed bool) {
	c.framesDecoded.WithLabelValues(op.String()).Inc()
	c.bytesIn.Add(float64(bodyLen))
	if compressed {
		c.compressedFrames.Inc()
	}
}

// FrameEncoded implements protocol.Observer.
func (c *Codec) FrameEncoded(op protocol.Opcode, bodyLen int, compressed bool) {
	c.framesEncoded.WithLabelValues(op.String()).Inc()
	c.bytesOut.Add(float64(bodyLen))
	if compressed {
		c.compressedFrames.Inc()
	}
}

// DecodeError implements protocol.Observer.
func (c *Codec) DecodeError(op protocol.Opcode) {
	c.decodeErrors.Inc()
}
