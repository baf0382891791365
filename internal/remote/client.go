// Package remote installs components, templates, blocks and fonts from a remote repository. Each kind has a
// manifest listing the files of its items:
//
//	{"navbar": {"files": ["navbar.css", "navbar.js"], "requires": ">= 1.0.0"}}
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/arif891/layx-sub000/internal/project/layout"
	"github.com/arif891/layx-sub000/internal/utils"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"gopkg.in/cenkalti/backoff.v1"
)

const (
	MANIFEST_FILENAME       = "manifest.json"
	DEFAULT_MAX_RETRY_DELAY = 20 * time.Second
	MAX_DOWNLOAD_SIZE       = 20_000_000
)

var (
	ErrUnknownItem         = errors.New("unknown item")
	ErrInvalidItemName     = errors.New("invalid item name")
	ErrInvalidManifest     = errors.New("invalid manifest")
	ErrIncompatibleVersion = errors.New("incompatible version")
	ErrFileTooLarge        = errors.New("file is too large")

	ITEM_NAME_REGEX = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

type Client struct {
	http       *http.Client
	baseURL    string
	fls        afs.Filesystem
	reg        *layout.Registry
	version    *semver.Version //version of the CLI, checked against the requirements of the items.
	logger     zerolog.Logger
	newBackOff func() backoff.BackOff
}

type ClientParams struct {
	HTTPClient *http.Client //defaults to http.DefaultClient
	BaseURL    string
	Filesystem afs.Filesystem
	Registry   *layout.Registry
	Version    *semver.Version
	Logger     zerolog.Logger

	//defaults to an exponential backoff stopping after DEFAULT_MAX_RETRY_DELAY.
	NewBackOff func() backoff.BackOff
}

func NewClient(params ClientParams) *Client {
	client := &Client{
		http:       params.HTTPClient,
		baseURL:    strings.TrimSuffix(params.BaseURL, "/"),
		fls:        params.Filesystem,
		reg:        params.Registry,
		version:    params.Version,
		logger:     params.Logger,
		newBackOff: params.NewBackOff,
	}

	if client.http == nil {
		client.http = http.DefaultClient
	}

	if client.newBackOff == nil {
		client.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = DEFAULT_MAX_RETRY_DELAY
			return b
		}
	}
	return client
}

// Add installs the items $names of kind $kind and returns the paths of the written files. All names are
// processed even if some fail, the errors are combined.
func (c *Client) Add(ctx context.Context, kind Kind, names []string) (written []string, _ error) {
	manifestURL := c.baseURL + "/" + kind.RemoteDir() + "/" + MANIFEST_FILENAME

	manifest, err := c.get(ctx, manifestURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the %s manifest: %w", kind, err)
	}
	if !gjson.ValidBytes(manifest) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, manifestURL)
	}

	var errs []error
	for _, name := range names {
		files, err := c.addItem(ctx, kind, manifest, name)
		written = append(written, files...)
		if err != nil {
			c.logger.Error().Err(err).Msgf("failed to add %s %s", kind, name)
			errs = append(errs, err)
			continue
		}
		c.logger.Info().Msgf("added %s %s", kind, name)
	}

	return written, utils.CombineErrorsWithPrefixMessage(fmt.Sprintf("failed to add %d %s(s)", len(errs), kind), errs...)
}

func (c *Client) addItem(ctx context.Context, kind Kind, manifest []byte, name string) (written []string, _ error) {
	if !ITEM_NAME_REGEX.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidItemName, name)
	}

	item := gjson.GetBytes(manifest, name)
	if !item.Exists() {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownItem, kind, name)
	}

	if err := c.checkRequirement(name, item.Get("requires")); err != nil {
		return nil, err
	}

	files := item.Get("files").Array()
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s %s has no files", ErrInvalidManifest, kind, name)
	}

	for _, file := range files {
		filename := file.String()
		if !isSafeRelativePath(filename) {
			return written, fmt.Errorf("%w: invalid file path %q for %s %s", ErrInvalidManifest, filename, kind, name)
		}

		url := c.baseURL + "/" + kind.RemoteDir() + "/" + name + "/" + filename
		content, err := c.get(ctx, url)
		if err != nil {
			return written, err
		}

		dst := path.Join(kind.LocalDir(c.reg), name, filename)
		if err := afs.WriteFile(c.fls, dst, content); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dst, err)
		}
		c.logger.Debug().Msgf("wrote %s", dst)
		written = append(written, dst)
	}

	return written, nil
}

func (c *Client) checkRequirement(name string, requires gjson.Result) error {
	if !requires.Exists() || c.version == nil {
		return nil
	}

	constraint, err := semver.NewConstraint(requires.String())
	if err != nil {
		return fmt.Errorf("%w: invalid requirement of %s: %w", ErrInvalidManifest, name, err)
	}

	if !constraint.Check(c.version) {
		return fmt.Errorf("%w: %s requires %s, the current version is %s", ErrIncompatibleVersion, name, requires.String(), c.version)
	}
	return nil
}

// get fetches $url, server errors and network errors are retried with an exponential backoff.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var (
		body         []byte
		permanentErr error
	)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			permanentErr = err
			return nil
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				permanentErr = ctx.Err()
				return nil
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			permanentErr = fmt.Errorf("%s: %s", url, resp.Status)
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, MAX_DOWNLOAD_SIZE+1))
		if err != nil {
			return err
		}
		if len(body) > MAX_DOWNLOAD_SIZE {
			permanentErr = fmt.Errorf("%w: %s", ErrFileTooLarge, url)
		}
		return nil
	}

	notify := func(err error, delay time.Duration) {
		c.logger.Warn().Err(err).Msgf("GET %s failed, retrying in %s", url, delay)
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(), notify); err != nil {
		return nil, err
	}
	if permanentErr != nil {
		return nil, permanentErr
	}
	return body, nil
}

func isSafeRelativePath(pth string) bool {
	if pth == "" || strings.HasPrefix(pth, "/") || strings.Contains(pth, "\\") {
		return false
	}
	for _, segment := range strings.Split(pth, "/") {
		if segment == ".." || segment == "" {
			return false
		}
	}
	return true
}
