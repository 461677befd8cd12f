package shell

import (
	"fmt"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

// Op names the remote operation a failure came from.
type Op int

const (
	OpOpen Op = iota
	OpList
	OpCopy
	OpMove
	OpDeleteFile
	OpRemoveDir
	OpCreateFolder
	OpSearch
	OpMetadata
	OpAccount
	OpSpace
	OpGet
	OpPut
)

type opText struct {
	label   string
	action  string
	subject string
}

var opTexts = map[Op]opText{
	OpOpen:         {"Open connection", "connecting", "account"},
	OpList:         {"List remote directory", "listing directory", "directory path"},
	OpCopy:         {"Copy path", "in copy", "path"},
	OpMove:         {"Rename path", "in renaming", "path"},
	OpDeleteFile:   {"Remove file", "deleting file", "file entry path"},
	OpRemoveDir:    {"Remove directory", "deleting directory", "directory path"},
	OpCreateFolder: {"Make directory", "creating directory", "directory path"},
	OpSearch:       {"Find", "find in path", "search path"},
	OpMetadata:     {"Info", "reading metadata", "entry path"},
	OpAccount:      {"Account", "reading account", "account"},
	OpSpace:        {"Space", "reading space usage", "account"},
	OpGet:          {"Get", "in download", "file path"},
	OpPut:          {"Put", "in upload", "file path"},
}

var lookupText = map[remote.LookupReason]string{
	remote.LookupMalformed: "is malformed",
	remote.LookupNotFolder: "is not directory folder",
	remote.LookupNotFound:  "is not found",
	remote.LookupOther:     "is other",
}

var writeText = map[remote.WriteReason]string{
	remote.WriteConflict:          "is in conflict",
	remote.WriteDisallowedName:    "is disallowed name",
	remote.WriteInsufficientSpace: "is insufficient space",
	remote.WriteMalformedPath:     "is malformed",
	remote.WriteNoPermission:      "has no write permission",
	remote.WriteOther:             "is other",
}

// Classify renders a remote failure of op as exactly one user-facing line.
// It never retries and never aborts the session.
func Classify(op Op, err error) string {
	rerr := remote.AsError(err)
	if rerr == nil {
		return ""
	}
	text, ok := opTexts[op]
	if !ok {
		text = opText{"Remote", "in operation", "path"}
	}

	switch rerr.Kind {
	case remote.ErrPathLookup:
		return fmt.Sprintf("%s: path lookup; %s %s.", text.label, text.subject, lookupText[rerr.Lookup])
	case remote.ErrPathWrite:
		if op == OpCreateFolder {
			if rerr.Write == remote.WriteConflict {
				return "Make directory: file or directory already exists at the directory path."
			}
			return fmt.Sprintf("Make directory: some other error creating directory occurred: %s", writeText[rerr.Write])
		}
		return fmt.Sprintf("%s: path write; %s %s.", text.label, text.subject, writeText[rerr.Write])
	case remote.ErrRelocation:
		return fmt.Sprintf("%s: some other relocation error %s occurred! %s.", text.label, text.action, rerr.Error())
	case remote.ErrService:
		return fmt.Sprintf("%s: some other DropBox remote error %s occurred! %s.", text.label, text.action, rerr.Error())
	default:
		return fmt.Sprintf("%s: some other unknown error %s occurred! %s.", text.label, text.action, rerr.Error())
	}
}
