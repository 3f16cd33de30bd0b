package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRuleEvaluation(t *testing.T) {
	m := New()

	m.RecordRuleEvaluation("capacity", "pass")
	m.RecordRuleEvaluation("capacity", "pass")
	m.RecordRuleEvaluation("capacity", "fail")
	m.RecordRuleError("capacity", "UNKNOWN_FIELD")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ruleEvaluations.WithLabelValues("capacity", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ruleEvaluations.WithLabelValues("capacity", "fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ruleErrors.WithLabelValues("capacity", "UNKNOWN_FIELD")))
}

func TestRecordConfigRefresh(t *testing.T) {
	m := New()

	m.RecordConfigRefresh(true, 12, 40)
	m.RecordConfigRefresh(false, 0, 0)

	assert.Equal(t, 12.0, testutil.ToFloat64(m.configRules))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.configFactors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configRefresh.WithLabelValues("error")))
}

func TestRecordCacheLookup(t *testing.T) {
	m := New()

	m.RecordCacheLookup("rules", "hit")
	m.RecordCacheLookup("rules", "miss")
	m.RecordCacheLookup("rules", "hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("rules", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("rules", "miss")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordShopEvaluation(true)
	m.RecordBatch(3, 20*time.Millisecond)
	m.RecordFactorFallback("material", "cleaning")

	path := filepath.Join(t.TempDir(), "shopeval.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `shopeval_shop_evaluations_total{eligible="true"} 1`))
	assert.Contains(t, text, "shopeval_batch_duration_seconds_count 1")
	assert.Contains(t, text, `shopeval_factor_fallbacks_total{factor_type="material",work_type="cleaning"} 1`)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}
