// Package remote defines the contract between the shell and a remote storage
// account.
//
// The shell never talks to a concrete API. It holds a Service obtained from a
// Connector and interprets failures through the tagged Error type:
//
//	Kind          Variants
//	Relocation    (detail message)
//	PathLookup    Malformed, NotFolder, NotFound, Other
//	PathWrite     Conflict, DisallowedName, InsufficientSpace, MalformedPath,
//	              NoWritePermission, Other
//	Service       (message from the provider)
//	Unknown       (anything else)
//
// AsError converts any error returned by a Service into that shape so callers
// can switch on Kind instead of matching provider-specific errors.
package remote
