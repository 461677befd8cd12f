// Package config provides configuration for the shell.
//
// Values are layered: built-in defaults, then an optional YAML or TOML file
// named by DBX_CONFIG, then environment variables.
//
// Environment Variables:
//   - DBX_APP_NAME, DBX_ACCESS_TOKEN: pre-seed `open` with no arguments
//   - DBX_TRANSCRIPT_PREFIX: prefix of generated transcript names
//   - DBX_API_URL, DBX_CONTENT_URL: API hosts
//   - DBX_HTTP_TIMEOUT, DBX_HTTP_RETRIES, DBX_HTTP_RETRY_WAIT,
//     DBX_HTTP_RETRY_MAX_WAIT, DBX_HTTP_RPS: remote client tuning
//   - LOG_LEVEL, LOG_DEV, LOG_OUTPUT
//   - DBX_METRICS_ADDR: serve /metrics and /healthz on this address
//
// Example file:
//
//	shell:
//	  app_name: myapp
//	http:
//	  timeout: 45s
//	  retries: 5
package config
