package fileio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/nsaphutils/pkg/frame"
	"gopkg.in/yaml.v3"
)

var ErrHTTPStatus = errors.New("unexpected HTTP status")

func clientOrDefault(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}

// urlPath returns the path part of rawURL, so that the query string
// does not affect the extension detection.
func urlPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("unable to parse URL '%s': %w", rawURL, err)
	}
	return u.Path, nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	reason := resp.Status
	if resp.Body != nil {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if s := strings.TrimSpace(string(body)); s != "" {
			reason = s
		}
	}
	return fmt.Errorf("%w %d: %s", ErrHTTPStatus, resp.StatusCode, reason)
}

func request(
	ctx context.Context,
	client *http.Client,
	method string,
	rawURL string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build a %s request to '%s': %w", method, rawURL, err)
	}
	resp, err := clientOrDefault(client).Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to %s '%s': %w", method, rawURL, err)
	}
	if err := checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("unable to %s '%s': %w", method, rawURL, err)
	}
	return resp, nil
}

// OpenURL streams the content of rawURL, transparently decompressing it
// according to the extension of the URL path.
func OpenURL(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	path, err := urlPath(rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := request(ctx, client, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	rc := datacounter.NewReaderCounter(resp.Body)

	compression, _ := CompressionOf(path)
	r, closers, err := decompress(rc, compression)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("unable to read '%s': %w", rawURL, err)
	}
	result := &readCloser{
		Reader:  r,
		closers: closers,
	}
	result.closers = append(result.closers, func() error {
		logger.Debugf(ctx, "read %d bytes from '%s'", rc.Count(), rawURL)
		return resp.Body.Close()
	})
	return result, nil
}

// ReadFrameURL reads a table from rawURL; the format is detected by the
// extension of the URL path.
func ReadFrameURL(ctx context.Context, client *http.Client, rawURL string) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "ReadFrameURL(%s)", rawURL)
	defer func() { logger.Tracef(ctx, "/ReadFrameURL(%s): %v", rawURL, _err) }()

	path, err := urlPath(rawURL)
	if err != nil {
		return nil, err
	}
	format, _, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	r, err := OpenURL(ctx, client, rawURL)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var f *frame.Frame
	switch format {
	case FormatXLSX:
		f, err = ReadXLSX(r, "")
	default:
		f, err = ReadCSV(r, csvOptionsFor(format))
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", rawURL, err)
	}
	return f, nil
}

// Download copies the content of rawURL to w as is and returns the
// amount of bytes copied.
func Download(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	w io.Writer,
) (int64, error) {
	resp, err := request(ctx, client, http.MethodGet, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("unable to download '%s': %w", rawURL, err)
	}
	logger.Debugf(ctx, "downloaded %d bytes from '%s'", n, rawURL)
	return n, nil
}

// IsDownloaded reports whether target exists and is newer than the
// content of rawURL.
//
// checkSize selects the size check: zero requires target to be of the
// same size as the remote content, a positive value requires target to
// be larger than checkSize (several URLs combined into one file), and a
// negative value disables the size check.
func IsDownloaded(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	target string,
	checkSize int64,
) (bool, error) {
	stat, err := os.Stat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("unable to stat '%s': %w", target, err)
	case !stat.Mode().IsRegular():
		return false, nil
	}

	resp, err := request(ctx, client, http.MethodHead, rawURL)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	var remoteDate time.Time
	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		remoteDate, err = http.ParseTime(lastModified)
		if err != nil {
			return false, fmt.Errorf("unable to parse Last-Modified '%s' of '%s': %w", lastModified, rawURL, err)
		}
	}
	remoteSize := max(resp.ContentLength, 0)

	dateOK := stat.ModTime().After(remoteDate)
	var sizeOK bool
	switch {
	case checkSize == 0:
		sizeOK = stat.Size() == remoteSize
	case checkSize > 0:
		sizeOK = stat.Size() > checkSize
	default:
		sizeOK = true
	}
	logger.Tracef(ctx, "IsDownloaded(%s, %s): local %d bytes at %v, remote %d bytes at %v", rawURL, target, stat.Size(), stat.ModTime(), remoteSize, remoteDate)
	return dateOK && sizeOK, nil
}

// DownloadTask downloads one or more URLs into a single destination file.
type DownloadTask struct {
	Destination string
	URLs        []string
}

func NewDownloadTask(destination string, urls ...string) *DownloadTask {
	return &DownloadTask{
		Destination: destination,
		URLs:        urls,
	}
}

func (t *DownloadTask) AddURL(rawURL string) {
	t.URLs = append(t.URLs, rawURL)
}

func (t *DownloadTask) String() string {
	dest := t.Destination
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	if len(t.URLs) == 1 {
		return fmt.Sprintf("%s ==> %s", t.URLs[0], dest)
	}
	return fmt.Sprintf("[%d]==> %s", len(t.URLs), dest)
}

// Reset removes the destination file, if any.
func (t *DownloadTask) Reset() error {
	err := os.Remove(t.Destination)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to remove '%s': %w", t.Destination, err)
	}
	return nil
}

// minTransformedSize is the size a destination built from several URLs
// must exceed to be considered complete.
const minTransformedSize = 1000

// IsUpToDate reports whether the destination is newer than every URL.
// An untransformed single-URL download must also match the remote size.
func (t *DownloadTask) IsUpToDate(
	ctx context.Context,
	client *http.Client,
	isTransformed bool,
) (bool, error) {
	if len(t.URLs) == 0 {
		return false, fmt.Errorf("no URLs to download into '%s'", t.Destination)
	}
	if len(t.URLs) == 1 && !isTransformed {
		return IsDownloaded(ctx, client, t.URLs[0], t.Destination, 0)
	}
	for _, rawURL := range t.URLs {
		ok, err := IsDownloaded(ctx, client, rawURL, t.Destination, minTransformedSize)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Download fetches every URL into the destination, one after another.
//
// When the URL and the destination have the same compression extension
// the bytes are copied as is; otherwise the content is decompressed and
// compressed again according to the destination extension. The
// destination is replaced only if every URL was fetched successfully.
func (t *DownloadTask) Download(ctx context.Context, client *http.Client) (_err error) {
	logger.Tracef(ctx, "Download(%s)", t)
	defer func() { logger.Tracef(ctx, "/Download(%s): %v", t, _err) }()

	if len(t.URLs) == 0 {
		return fmt.Errorf("no URLs to download into '%s'", t.Destination)
	}

	tmpPath := filepath.Join(filepath.Dir(t.Destination), ".download-"+filepath.Base(t.Destination))
	dstCompression, _ := CompressionOf(t.Destination)
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("unable to create '%s': %w", tmpPath, err)
	}
	w := datacounter.NewWriterCounter(f)

	err = t.fetchAll(ctx, client, w, dstCompression)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("unable to close '%s': %w", tmpPath, closeErr)
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, t.Destination); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("unable to move '%s' to '%s': %w", tmpPath, t.Destination, err)
	}
	logger.Infof(ctx, "downloaded %s (%d bytes)", t, w.Count())
	return nil
}

func (t *DownloadTask) fetchAll(
	ctx context.Context,
	client *http.Client,
	w io.Writer,
	dstCompression Compression,
) error {
	for _, rawURL := range t.URLs {
		path, err := urlPath(rawURL)
		if err != nil {
			return err
		}
		srcCompression, _ := CompressionOf(path)
		if srcCompression == dstCompression {
			if _, err := Download(ctx, client, rawURL, w); err != nil {
				return err
			}
			continue
		}
		if err := t.transcode(ctx, client, rawURL, w, dstCompression); err != nil {
			return err
		}
	}
	return nil
}

// transcode appends the decompressed content of rawURL to w, as a
// separate compressed member when dstCompression is set.
func (t *DownloadTask) transcode(
	ctx context.Context,
	client *http.Client,
	rawURL string,
	w io.Writer,
	dstCompression Compression,
) error {
	r, err := OpenURL(ctx, client, rawURL)
	if err != nil {
		return err
	}
	defer r.Close()

	cw, err := compress(w, dstCompression)
	if err != nil {
		return err
	}
	if _, err := io.Copy(cw, r); err != nil {
		cw.Close()
		return fmt.Errorf("unable to download '%s': %w", rawURL, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("unable to finish '%s': %w", rawURL, err)
	}
	return nil
}

// ReadDict reads a JSON or YAML document (by extension) into a map.
func ReadDict(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	result := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.NewDecoder(f).Decode(&result)
	case ".yml", ".yaml":
		err = yaml.NewDecoder(f).Decode(&result)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("unsupported format of '%s'; supported: JSON, YAML", path)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}
	return result, nil
}
