package fileio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/nsaphutils/pkg/frame"
)

type Format string

const (
	FormatCSV  = Format("csv")
	FormatTSV  = Format("tsv")
	FormatXLSX = Format("xlsx")
)

// FormatOf detects the table format by the file extension, ignoring
// the compression extension.
func FormatOf(path string) (Format, Compression, error) {
	compression, base := CompressionOf(path)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(base)), ".")
	switch Format(ext) {
	case FormatCSV, FormatTSV:
		return Format(ext), compression, nil
	case FormatXLSX:
		if compression != CompressionNone {
			return "", "", fmt.Errorf("compressed xlsx files are not supported: '%s'", path)
		}
		return FormatXLSX, compression, nil
	}
	return "", "", fmt.Errorf("unknown table format of '%s'; supported: .csv, .tsv, .xlsx", path)
}

func csvOptionsFor(format Format) CSVOptions {
	opts := DefaultCSVOptions()
	if format == FormatTSV {
		opts.Delimiter = '\t'
	}
	return opts
}

// ReadFrame reads a table from path; the format is detected by the
// extension.
func ReadFrame(ctx context.Context, path string) (_ret *frame.Frame, _err error) {
	logger.Tracef(ctx, "ReadFrame(%s)", path)
	defer func() { logger.Tracef(ctx, "/ReadFrame(%s): %v", path, _err) }()

	format, _, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	r, err := Open(ctx, path)
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
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	logger.Debugf(ctx, "read %d rows x %d columns from '%s'", f.Len(), len(f.Header), path)
	return f, nil
}

// WriteFrame writes a table to path; the format is detected by the
// extension.
func WriteFrame(ctx context.Context, path string, f *frame.Frame) (_err error) {
	logger.Tracef(ctx, "WriteFrame(%s)", path)
	defer func() { logger.Tracef(ctx, "/WriteFrame(%s): %v", path, _err) }()

	format, _, err := FormatOf(path)
	if err != nil {
		return err
	}

	w, err := Create(ctx, path)
	if err != nil {
		return err
	}

	switch format {
	case FormatXLSX:
		err = WriteXLSX(w, DefaultSheet, f)
	default:
		err = WriteCSV(w, f, csvOptionsFor(format))
	}
	if err != nil {
		w.Close()
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to close '%s': %w", path, err)
	}
	return nil
}
