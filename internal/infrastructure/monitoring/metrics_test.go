package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCommand(t *testing.T) {
	m := NewMetrics()

	m.RecordCommand("ls", OutcomeOK)
	m.RecordCommand("ls", OutcomeOK)
	m.RecordCommand("cd", OutcomeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("ls", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("cd", OutcomeError)))
}

func TestTransferAndConnected(t *testing.T) {
	m := NewMetrics()

	m.AddTransfer(DirectionGet, 100)
	m.AddTransfer(DirectionGet, 0)
	m.AddTransfer(DirectionPut, 7)
	m.SetConnected(true)

	assert.Equal(t, 100.0, testutil.ToFloat64(m.TransferBytes.WithLabelValues(DirectionGet)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.TransferBytes.WithLabelValues(DirectionPut)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connected))

	m.SetConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connected))
}

func TestTimer(t *testing.T) {
	m := NewMetrics()

	timer := NewTimer(m, "list_folder")
	d := timer.Stop("ok")

	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteCalls.WithLabelValues("list_folder", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RemoteDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordCommand("ls", OutcomeOK)
		m.RecordRemoteCall("copy", "ok", time.Second)
		m.AddTransfer(DirectionPut, 10)
		m.SetConnected(true)
		NewTimer(m, "copy").Stop("ok")
	})
	assert.NotNil(t, m.Registry())
}

func TestServerEndpoints(t *testing.T) {
	m := NewMetrics()
	m.RecordCommand("pwd", OutcomeOK)
	srv := NewServer("127.0.0.1:0", m, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `dbxshell_commands_total{command="pwd",outcome="ok"} 1`))
	assert.Contains(t, body, "dbxshell_uptime_seconds")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/healthz", "200")))
}
