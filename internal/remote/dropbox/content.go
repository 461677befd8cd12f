package dropbox

import (
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/dbxshell/internal/remote"
)

const (
	headerArg    = "Dropbox-API-Arg"
	headerResult = "Dropbox-API-Result"
)

// Upload stores r at path. The add mode never overwrites: an existing file
// yields a write conflict.
func (c *Client) Upload(ctx context.Context, path string, r io.Reader) (*remote.Entry, error) {
	arg, err := apiArg(uploadArg{Path: path, Mode: "add"})
	if err != nil {
		return nil, remote.Errorf("upload: encode argument: %v", err)
	}

	var m metadata
	err = c.do(ctx, "upload", func() error {
		resp, err := c.content.R().
			SetContext(ctx).
			SetHeader(headerArg, arg).
			SetHeader("Content-Type", "application/octet-stream").
			SetBody(r).
			Post("/files/upload")
		if err != nil {
			return transportError("upload", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return decodeError(familyUpload, resp.StatusCode(), resp.Body())
		}
		if err := sonic.Unmarshal(resp.Body(), &m); err != nil {
			return remote.Errorf("upload: decode response: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e := m.entry()
	e.Kind = remote.KindFile
	return &e, nil
}

// Download streams the file at path into w.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (*remote.Entry, error) {
	arg, err := apiArg(pathArg{Path: path})
	if err != nil {
		return nil, remote.Errorf("download: encode argument: %v", err)
	}

	var m metadata
	err = c.do(ctx, "download", func() error {
		resp, err := c.content.R().
			SetContext(ctx).
			SetHeader(headerArg, arg).
			SetDoNotParseResponse(true).
			Post("/files/download")
		if err != nil {
			return transportError("download", err)
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() != http.StatusOK {
			data, _ := io.ReadAll(body)
			return decodeError(familyLookup, resp.StatusCode(), data)
		}
		if err := sonic.UnmarshalString(resp.Header().Get(headerResult), &m); err != nil {
			return remote.Errorf("download: decode result header: %v", err)
		}
		if _, err := io.Copy(w, body); err != nil {
			return remote.Errorf("download: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e := m.entry()
	e.Kind = remote.KindFile
	return &e, nil
}
