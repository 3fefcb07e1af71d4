package fileio

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/mebo/blob"
	"github.com/arloliu/mebo/format"
	"github.com/cespare/xxhash/v2"
	"github.com/xaionaro-go/nsaphutils/pkg/series"
)

// MaxBlobSeriesLength is the maximum amount of values of a single
// series in a blob.
const MaxBlobSeriesLength = math.MaxUint16

// SeriesID is the identifier of a named series inside a blob.
func SeriesID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// EncodeSeriesBlob packs named series into a binary columnar blob.
//
// A series without an index is given the timestamps startTime,
// startTime+step, startTime+2*step, ... Timestamps are stored with
// microsecond precision. Missing values are kept as is.
func EncodeSeriesBlob(
	startTime time.Time,
	step time.Duration,
	ss []*series.Float64,
) ([]byte, error) {
	enc, err := blob.NewNumericEncoder(
		startTime,
		blob.WithTimestampEncoding(format.TypeRaw),
		blob.WithValueEncoding(format.TypeGorilla),
		blob.WithTimestampCompression(format.CompressionNone),
		blob.WithValueCompression(format.CompressionZstd),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the encoder: %w", err)
	}

	for _, s := range ss {
		if s.Name == "" {
			return nil, fmt.Errorf("a series in a blob must have a name")
		}
		if s.Len() == 0 || s.Len() > MaxBlobSeriesLength {
			return nil, fmt.Errorf("series '%s' has %d values, expected 1..%d", s.Name, s.Len(), MaxBlobSeriesLength)
		}
		if len(s.Index) != 0 && len(s.Index) != len(s.Values) {
			return nil, fmt.Errorf("series '%s' has %d index entries for %d values", s.Name, len(s.Index), len(s.Values))
		}

		if err := enc.StartMetricID(SeriesID(s.Name), s.Len()); err != nil {
			return nil, fmt.Errorf("unable to start series '%s': %w", s.Name, err)
		}
		for idx, v := range s.Values {
			ts := startTime.Add(time.Duration(idx) * step)
			if len(s.Index) != 0 {
				ts = s.Index[idx]
			}
			if err := enc.AddDataPoint(ts.UnixMicro(), v, ""); err != nil {
				return nil, fmt.Errorf("unable to add value %d of series '%s': %w", idx, s.Name, err)
			}
		}
		if err := enc.EndMetric(); err != nil {
			return nil, fmt.Errorf("unable to finish series '%s': %w", s.Name, err)
		}
	}

	data, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("unable to finish the blob: %w", err)
	}
	return data, nil
}

// DecodeSeriesBlob extracts the named series from a blob produced by
// EncodeSeriesBlob. The returned series have a time index in UTC.
func DecodeSeriesBlob(data []byte, names ...string) ([]*series.Float64, error) {
	dec, err := blob.NewNumericDecoder(data)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the decoder: %w", err)
	}
	b, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("unable to decode the blob: %w", err)
	}

	result := make([]*series.Float64, 0, len(names))
	for _, name := range names {
		id := SeriesID(name)
		if !b.HasMetricID(id) {
			return nil, fmt.Errorf("series '%s' is not found in the blob", name)
		}

		length := b.Len(id)
		index := make([]time.Time, 0, length)
		values := make([]float64, 0, length)
		for _, dp := range b.All(id) {
			index = append(index, time.UnixMicro(dp.Ts).UTC())
			values = append(values, dp.Val)
		}

		s, err := series.NewWithIndex(index, values)
		if err != nil {
			return nil, fmt.Errorf("unable to construct series '%s': %w", name, err)
		}
		s.Name = name
		result = append(result, s)
	}
	return result, nil
}
