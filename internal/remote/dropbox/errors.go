package dropbox

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

// errorFamily selects how an endpoint's 409 error union is read.
type errorFamily int

const (
	// list_folder, get_metadata, search, download: "path" holds a LookupError
	familyLookup errorFamily = iota
	// delete: "path_lookup" or "path_write"
	familyDelete
	// create_folder: "path" holds a WriteError
	familyWrite
	// upload: "path" holds {reason: WriteError}
	familyUpload
	// copy, move
	familyRelocation
	// users/*: anything is a service failure
	familyService
)

type union struct {
	Tag    string `json:".tag"`
	Reason *union `json:"reason,omitempty"`
}

type apiError struct {
	Summary string `json:"error_summary"`
	Error   struct {
		Tag        string `json:".tag"`
		Path       *union `json:"path,omitempty"`
		PathLookup *union `json:"path_lookup,omitempty"`
		PathWrite  *union `json:"path_write,omitempty"`
	} `json:"error"`
}

// decodeError maps a non-200 response onto a tagged remote error.
func decodeError(family errorFamily, status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return remote.NewServiceError("invalid access token: "+summary(body), nil)
	case status == http.StatusTooManyRequests:
		return remote.NewServiceError("too many requests: "+summary(body), nil)
	case status >= 500:
		return remote.NewServiceError(fmt.Sprintf("server error %d: %s", status, summary(body)), nil)
	case status != http.StatusConflict:
		return remote.NewServiceError(fmt.Sprintf("bad request %d: %s", status, summary(body)), nil)
	}

	var apiErr apiError
	if err := sonic.Unmarshal(body, &apiErr); err != nil {
		return remote.Errorf("undecodable error response: %s", strings.TrimSpace(string(body)))
	}
	msg := apiErr.Summary

	switch family {
	case familyRelocation:
		return remote.NewRelocationError(msg)
	case familyService:
		return remote.NewServiceError(msg, nil)
	case familyDelete:
		switch apiErr.Error.Tag {
		case "path_lookup":
			return remote.NewLookupError(lookupReason(apiErr.Error.PathLookup), msg)
		case "path_write":
			return remote.NewWriteError(writeReason(apiErr.Error.PathWrite), msg)
		}
	case familyLookup:
		if apiErr.Error.Tag == "path" {
			return remote.NewLookupError(lookupReason(apiErr.Error.Path), msg)
		}
	case familyWrite:
		if apiErr.Error.Tag == "path" {
			return remote.NewWriteError(writeReason(apiErr.Error.Path), msg)
		}
	case familyUpload:
		if apiErr.Error.Tag == "path" && apiErr.Error.Path != nil {
			return remote.NewWriteError(writeReason(apiErr.Error.Path.Reason), msg)
		}
	}
	return remote.NewServiceError(msg, nil)
}

func lookupReason(u *union) remote.LookupReason {
	if u == nil {
		return remote.LookupOther
	}
	switch u.Tag {
	case "malformed_path":
		return remote.LookupMalformed
	case "not_folder":
		return remote.LookupNotFolder
	case "not_found":
		return remote.LookupNotFound
	default:
		return remote.LookupOther
	}
}

func writeReason(u *union) remote.WriteReason {
	if u == nil {
		return remote.WriteOther
	}
	switch u.Tag {
	case "conflict":
		return remote.WriteConflict
	case "disallowed_name":
		return remote.WriteDisallowedName
	case "insufficient_space":
		return remote.WriteInsufficientSpace
	case "malformed_path":
		return remote.WriteMalformedPath
	case "no_write_permission":
		return remote.WriteNoPermission
	default:
		return remote.WriteOther
	}
}

// summary extracts error_summary from a JSON body, or the trimmed text.
func summary(body []byte) string {
	var apiErr apiError
	if err := sonic.Unmarshal(body, &apiErr); err == nil && apiErr.Summary != "" {
		return apiErr.Summary
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
