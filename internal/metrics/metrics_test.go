package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeometryError(t *testing.T) {
	before := testutil.ToFloat64(geometryErrorsTotal.WithLabelValues("derive"))
	RecordGeometryError("derive")
	assert.InDelta(t, before+1, testutil.ToFloat64(geometryErrorsTotal.WithLabelValues("derive")), 1e-9)
}

func TestRecordWarnings(t *testing.T) {
	assignBefore := testutil.ToFloat64(assignmentWarningsTotal)
	mismatchBefore := testutil.ToFloat64(oracleMismatchTotal)
	RecordAssignmentWarning()
	RecordOracleMismatch()
	RecordOracleMismatch()
	assert.InDelta(t, assignBefore+1, testutil.ToFloat64(assignmentWarningsTotal), 1e-9)
	assert.InDelta(t, mismatchBefore+2, testutil.ToFloat64(oracleMismatchTotal), 1e-9)
}

func TestRecordPage(t *testing.T) {
	okBefore := testutil.ToFloat64(pagesProcessedTotal.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(pagesProcessedTotal.WithLabelValues("error"))
	RecordPage(nil, 10*time.Millisecond)
	RecordPage(errors.New("boom"), time.Millisecond)
	assert.InDelta(t, okBefore+1, testutil.ToFloat64(pagesProcessedTotal.WithLabelValues("success")), 1e-9)
	assert.InDelta(t, errBefore+1, testutil.ToFloat64(pagesProcessedTotal.WithLabelValues("error")), 1e-9)
}
