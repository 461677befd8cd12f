/*
Package monitoring provides Prometheus metrics for the shell.

Collectors live on a private registry so tests can build as many Metrics as
they need. Every recording method accepts a nil receiver, which lets
components run without metrics wired.

# Metrics

  - dbxshell_commands_total{command,outcome}: evaluated commands
  - dbxshell_connected: 1 while a remote session is open
  - dbxshell_transfer_bytes_total{direction}: bytes moved by get/put
  - dbxshell_remote_calls_total{op,result}: remote API calls
  - dbxshell_remote_call_duration_seconds{op}: remote API latency
  - dbxshell_http_requests_total{path,status}: scrapes of this endpoint
  - dbxshell_uptime_seconds

# Endpoint

When DBX_METRICS_ADDR is set, NewServer exposes /metrics and /healthz on
that address through gin:

	srv := monitoring.NewServer(":9464", metrics, logger)
	srv.Start(ctx)
*/
package monitoring
