// Package fileio reads and writes frames and series: CSV (optionally
// gzip, zstd or lz4 compressed), XLSX workbooks and binary series blobs,
// from local files or over HTTP.
package fileio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/xaionaro-go/datacounter"
)

type Compression string

const (
	CompressionNone = Compression("")
	CompressionGzip = Compression(".gz")
	CompressionZstd = Compression(".zst")
	CompressionLZ4  = Compression(".lz4")
)

// CompressionOf detects the compression by the file extension
// (case-insensitive) and returns the path without it.
func CompressionOf(path string) (Compression, string) {
	ext := Compression(strings.ToLower(filepath.Ext(path)))
	switch ext {
	case CompressionGzip, CompressionZstd, CompressionLZ4:
		return ext, path[:len(path)-len(ext)]
	}
	return CompressionNone, path
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	return closeAll(rc.closers)
}

func closeAll(closers []func() error) error {
	var mErr *multierror.Error
	for _, closer := range closers {
		if err := closer(); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	return mErr.ErrorOrNil()
}

// decompress wraps r into a decompressor chosen by compression. The
// returned closers release the decompressor only, not r.
func decompress(r io.Reader, compression Compression) (io.Reader, []func() error, error) {
	switch compression {
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to initialize a gzip reader: %w", err)
		}
		return gr, []func() error{gr.Close}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to initialize a zstd reader: %w", err)
		}
		return zr, []func() error{func() error { zr.Close(); return nil }}, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil, nil
	default:
		return r, nil, nil
	}
}

// Open opens the file for reading, transparently decompressing it
// according to its extension.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	rc := datacounter.NewReaderCounter(f)

	compression, _ := CompressionOf(path)
	r, closers, err := decompress(rc, compression)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	result := &readCloser{
		Reader:  r,
		closers: closers,
	}
	result.closers = append(result.closers, func() error {
		logger.Debugf(ctx, "read %d bytes from '%s'", rc.Count(), path)
		return f.Close()
	})
	return result, nil
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (wc *writeCloser) Close() error {
	return closeAll(wc.closers)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// compress wraps w into a compressor chosen by compression. Closing the
// result flushes the compressor, but does not close w.
func compress(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize a zstd writer: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{Writer: w}, nil
	}
}

// Create creates (or truncates) the file for writing, transparently
// compressing it according to its extension. The returned writer must
// be closed to flush the compressor.
func Create(ctx context.Context, path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create '%s': %w", path, err)
	}
	wc := datacounter.NewWriterCounter(f)

	compression, _ := CompressionOf(path)
	cw, err := compress(wc, compression)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("unable to write '%s': %w", path, err)
	}
	return &writeCloser{
		Writer: cw,
		closers: []func() error{
			cw.Close,
			func() error {
				logger.Debugf(ctx, "written %d bytes to '%s'", wc.Count(), path)
				return f.Close()
			},
		},
	}, nil
}
