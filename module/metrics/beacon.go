// Package metrics provides prometheus-backed implementations of the
// protocol's observability interfaces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/protocol"
)

const (
	namespaceBeacon = "cr2"
	subsystemEngine = "beacon"
)

// BeaconCollector reports accept/reject decisions and phase transitions of a
// protocol engine as prometheus metrics. It implements protocol.Consumer.
type BeaconCollector struct {
	submissionsAccepted *prometheus.CounterVec
	submissionsRejected *prometheus.CounterVec
	phaseTransitions    prometheus.Counter
	runsFinalized       prometheus.Counter
}

var _ protocol.Consumer = (*BeaconCollector)(nil)

// NewBeaconCollector creates a new beacon collector and registers its
// metrics with the given registerer.
func NewBeaconCollector(registerer prometheus.Registerer) *BeaconCollector {
	submissionsAccepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceBeacon,
		Subsystem: subsystemEngine,
		Name:      "submissions_accepted_total",
		Help:      "the number of accepted protocol submissions, by phase",
	}, []string{"phase"})
	submissionsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceBeacon,
		Subsystem: subsystemEngine,
		Name:      "submissions_rejected_total",
		Help:      "the number of rejected protocol submissions, by phase",
	}, []string{"phase"})
	phaseTransitions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceBeacon,
		Subsystem: subsystemEngine,
		Name:      "phase_transitions_total",
		Help:      "the number of protocol phase transitions",
	})
	runsFinalized := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceBeacon,
		Subsystem: subsystemEngine,
		Name:      "runs_finalized_total",
		Help:      "the number of protocol runs that produced final randomness",
	})
	registerer.MustRegister(submissionsAccepted, submissionsRejected, phaseTransitions, runsFinalized)

	return &BeaconCollector{
		submissionsAccepted: submissionsAccepted,
		submissionsRejected: submissionsRejected,
		phaseTransitions:    phaseTransitions,
		runsFinalized:       runsFinalized,
	}
}

func (bc *BeaconCollector) OnSubmissionAccepted(_ beacon.Address, phase string) {
	bc.submissionsAccepted.WithLabelValues(phase).Inc()
}

func (bc *BeaconCollector) OnSubmissionRejected(_ beacon.Address, phase string, _ error) {
	bc.submissionsRejected.WithLabelValues(phase).Inc()
}

func (bc *BeaconCollector) OnPhaseTransition(_ string, _ string) {
	bc.phaseTransitions.Inc()
}

func (bc *BeaconCollector) OnRandomnessFinalized(_ crypto.Hash) {
	bc.runsFinalized.Inc()
}
