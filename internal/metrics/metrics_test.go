package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryScrape(t *testing.T) {
	r := NewRegistry()
	r.RecordClassification("Stress")
	r.RecordClassification("Stress")
	r.RecordAlert("credit_contraction", "Red")
	r.SetIdentityImbalance(12.5)
	stop := r.StepTimer("classify")
	stop()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `liquidrun_classifications_total{regime="Stress"} 2`)
	assert.Contains(t, body, `liquidrun_alerts_fired_total{level="Red",rule="credit_contraction"} 1`)
	assert.Contains(t, body, "liquidrun_identity_imbalance_billions 12.5")
	assert.Contains(t, body, "liquidrun_step_duration_seconds")
}
