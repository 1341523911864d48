package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordActivityOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(ActivityOperationsTotal.WithLabelValues("sign_up", "ok"))
	errBefore := testutil.ToFloat64(ActivityOperationsTotal.WithLabelValues("sign_up", "error"))

	RecordActivityOperation("sign_up", nil)
	RecordActivityOperation("sign_up", errors.New("boom"))
	RecordActivityOperation("sign_up", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ActivityOperationsTotal.WithLabelValues("sign_up", "ok")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(ActivityOperationsTotal.WithLabelValues("sign_up", "error")))
}

func TestRecordSweep(t *testing.T) {
	before := testutil.ToFloat64(ExpiredActivitiesSweptTotal)

	RecordSweep(3)
	RecordSweep(0)

	assert.Equal(t, before+3, testutil.ToFloat64(ExpiredActivitiesSweptTotal))
}

func TestRecordNotificationAndHTTP(t *testing.T) {
	before := testutil.ToFloat64(NotificationsTotal.WithLabelValues("ACCEPTED", "failed"))
	RecordNotification("ACCEPTED", "failed")
	assert.Equal(t, before+1, testutil.ToFloat64(NotificationsTotal.WithLabelValues("ACCEPTED", "failed")))

	reqBefore := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/activities", "200"))
	RecordHTTPRequest("GET", "/activities", "200", 0.01)
	assert.Equal(t, reqBefore+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/activities", "200")))
}
