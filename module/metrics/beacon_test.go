package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/crlabs/commit-reveal2/crypto"
	"github.com/crlabs/commit-reveal2/model/beacon"
	"github.com/crlabs/commit-reveal2/protocol"
)

func TestBeaconCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewBeaconCollector(registry)

	sender := beacon.HexToAddress("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	collector.OnSubmissionAccepted(sender, "COMMIT")
	collector.OnSubmissionAccepted(sender, "COMMIT")
	collector.OnSubmissionRejected(sender, "COMMIT", protocol.NewDuplicateSubmissionErrorf("dup"))
	collector.OnPhaseTransition("COMMIT", "REVEAL1")
	collector.OnRandomnessFinalized(crypto.MakeHash([]byte("omega")))

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.submissionsAccepted.WithLabelValues("COMMIT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.submissionsRejected.WithLabelValues("COMMIT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phaseTransitions))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.runsFinalized))
}
