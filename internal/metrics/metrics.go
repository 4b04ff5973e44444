// Package metrics counts validation results with Prometheus collectors.
//
// The CLI is a batch job, so metrics are not scraped over HTTP; they are
// written to a file in the text exposition format for node_exporter's
// textfile collector.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Neumenon/utf8scan/utf8scan"
)

const namespace = "utf8scan"

// Result labels for the inputs counter.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Recorder owns a private registry and the utf8scan collectors.
type Recorder struct {
	reg          *prometheus.Registry
	inputs       *prometheus.CounterVec
	bytes        prometheus.Counter
	chars        *prometheus.CounterVec
	decodeErrors *prometheus.CounterVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_total",
			Help:      "Inputs processed, by result.",
		}, []string{"result"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Bytes consumed across all inputs.",
		}),
		chars: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "characters_total",
			Help:      "Characters in valid inputs, by class.",
		}, []string{"class"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Decode failures, by kind.",
		}, []string{"kind"}),
	}
	r.reg.MustRegister(r.inputs, r.bytes, r.chars, r.decodeErrors)
	return r
}

// Observe records one input. consumed is the number of bytes read before
// the scan stopped.
func (r *Recorder) Observe(consumed int64, t utf8scan.Tally, err error) {
	r.bytes.Add(float64(consumed))

	var de *utf8scan.DecodeError
	switch {
	case err == nil:
		r.inputs.WithLabelValues(ResultValid).Inc()
		r.chars.WithLabelValues("ascii").Add(float64(t.ASCII))
		r.chars.WithLabelValues("multibyte").Add(float64(t.MultiByte))
	case errors.As(err, &de):
		r.inputs.WithLabelValues(ResultInvalid).Inc()
		r.decodeErrors.WithLabelValues(de.Kind.String()).Inc()
	default:
		r.inputs.WithLabelValues(ResultError).Inc()
	}
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
