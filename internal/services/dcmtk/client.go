package dcmtk

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"dcmsort/internal/config"
	"dcmsort/internal/services"
)

var commandContext = exec.CommandContext

// Client wraps the DCMTK command line tools used for network transfer and
// pixel-data transcoding.
type Client struct {
	binDir     string
	ownAETitle string
}

// Option configures the client.
type Option func(*Client)

// WithBinDir points the client at a DCMTK installation directory instead of
// resolving binaries from PATH.
func WithBinDir(dir string) Option {
	return func(c *Client) {
		c.binDir = strings.TrimSpace(dir)
	}
}

// WithOwnAETitle overrides the AE title announced by this sender.
func WithOwnAETitle(title string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			c.ownAETitle = trimmed
		}
	}
}

// NewClient constructs a client using defaults.
func NewClient(opts ...Option) *Client {
	client := &Client{ownAETitle: "DCMSORT"}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Binary returns the resolved path of a DCMTK tool.
func (c *Client) Binary(name string) string {
	if c.binDir == "" {
		return name
	}
	return filepath.Join(c.binDir, name)
}

// Send transmits every DICOM file under dir to the endpoint using dcmsend,
// recursing through subdirectories. It returns the tool's standard output;
// on a non-zero exit the error carries the captured standard error so the
// operator sees what the receiver rejected.
func (c *Client) Send(ctx context.Context, dir string, endpoint config.Endpoint, verbose bool) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("directory required")
	}
	if endpoint.Host == "" || endpoint.Port == 0 {
		return "", errors.New("endpoint host and port required")
	}

	args := []string{
		endpoint.Host, strconv.Itoa(endpoint.Port),
		"-aec", endpoint.AETitle,
		"-aet", c.ownAETitle,
		"--scan-directories", "--recurse", dir,
	}
	if verbose {
		args = append(args, "--verbose")
	}

	cmd := commandContext(ctx, c.Binary("dcmsend"), args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return stdout.String(), services.Wrap(services.ErrExternalTool, "sending", "dcmsend", detail, err)
	}
	return stdout.String(), nil
}

// Compress re-encodes the record at path with RLE lossless in place.
func (c *Client) Compress(ctx context.Context, path string) error {
	return c.transcode(ctx, "dcmcrle", path)
}

// Decompress rewrites the record at path as uncompressed in place.
func (c *Client) Decompress(ctx context.Context, path string) error {
	return c.transcode(ctx, "dcmdrle", path)
}

// transcode runs a DCMTK converter into a sibling temp file and swaps it in
// only on success, so a failed conversion never corrupts the original.
func (c *Client) transcode(ctx context.Context, tool, path string) error {
	tmp := path + ".tmp"
	cmd := commandContext(ctx, c.Binary(tool), path, tmp) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "transcoding", tool, detail, err)
	}
	return os.Rename(tmp, path)
}
