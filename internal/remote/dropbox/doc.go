/*
Package dropbox implements remote.Service over the Dropbox API v2.

RPC endpoints (metadata, listing, search, copy, move, delete, create folder,
account and space) are JSON POSTs to the API host. Uploads and downloads go
to the content host with their argument in the Dropbox-API-Arg header.

Every call passes a client-side rate limiter and a circuit breaker, and is
timed into monitoring.Metrics. RPC calls are retried on connection errors,
429 and 5xx using go-retryablehttp's policy and backoff. Endpoint errors
(HTTP 409) are decoded into *remote.Error:

	409 path/not_found        -> ErrPathLookup / LookupNotFound
	409 path/conflict (write) -> ErrPathWrite / WriteConflict
	409 on copy/move          -> ErrRelocation
	401, 429, 5xx, transport  -> ErrService
*/
package dropbox
