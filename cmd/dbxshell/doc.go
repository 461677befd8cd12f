// Command dbxshell is an interactive command shell over a Dropbox account
// and the local filesystem.
//
// Configuration comes from defaults, an optional YAML or TOML file named by
// DBX_CONFIG, then environment variables:
//
//	DBX_APP_NAME, DBX_ACCESS_TOKEN   pre-seed the 'open' command
//	DBX_TRANSCRIPT_PREFIX            default transcript file prefix
//	DBX_METRICS_ADDR                 serve /metrics and /healthz when set
//	LOG_LEVEL, LOG_DEV, LOG_OUTPUT   logging (stderr by default)
//
// Usage:
//
//	DBX_ACCESS_TOKEN=... dbxshell
//	::>appname myapp
//	myapp::>open
//
// Signals:
//   - SIGINT, SIGTERM: close the connection, print the report and exit
package main
