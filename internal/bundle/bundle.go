// Package bundle snapshots a whole schedule store into one file and loads
// it back. A bundle is
//
//	magic "TXCB" | format version (1 byte) | BLAKE3-256 of the CBOR body | zstd(CBOR body)
//
// The body is Core Deterministic CBOR, so exporting the same store twice
// produces identical bytes.
package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/store"
	"github.com/shopspring/decimal"
	"github.com/zeebo/blake3"
)

// FormatVersion is written after the magic bytes
const FormatVersion byte = 1

var magic = []byte("TXCB")

const headerSize = 4 + 1 + 32

// ErrCorrupt is returned when a bundle fails its integrity checks
var ErrCorrupt = errors.New("bundle is corrupt")

type document struct {
	Version int     `cbor:"1,keyasint"`
	Entries []entry `cbor:"2,keyasint"`
}

type entry struct {
	Jurisdiction string    `cbor:"1,keyasint"`
	FiscalYear   string    `cbor:"2,keyasint"`
	FilingStatus string    `cbor:"3,keyasint"`
	Brackets     []bracket `cbor:"4,keyasint"`
}

// bracket keeps decimals as text so no precision is lost
type bracket struct {
	Upper string `cbor:"1,keyasint"`
	Rate  string `cbor:"2,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bundle: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("bundle: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("bundle: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("bundle: zstd decoder initialization failed: " + err.Error())
	}
}

// Encode serializes schedules into a bundle. Schedules are written in
// store key order regardless of the order given.
func Encode(schedules []*domain.BracketSchedule) ([]byte, error) {
	byKey := make(map[domain.ScheduleKey]*domain.BracketSchedule, len(schedules))
	keys := make([]domain.ScheduleKey, 0, len(schedules))
	for _, s := range schedules {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byKey[s.Key()]; dup {
			return nil, fmt.Errorf("schedule %s appears twice", s.Key())
		}
		byKey[s.Key()] = s
		keys = append(keys, s.Key())
	}
	store.SortKeys(keys)

	doc := document{Version: int(FormatVersion), Entries: make([]entry, 0, len(keys))}
	for _, key := range keys {
		s := byKey[key]
		e := entry{
			Jurisdiction: key.Jurisdiction,
			FiscalYear:   key.FiscalYear,
			FilingStatus: string(key.FilingStatus),
			Brackets:     make([]bracket, s.Len()),
		}
		for i := 0; i < s.Len(); i++ {
			e.Brackets[i] = bracket{Upper: s.At(i).Upper.String(), Rate: s.At(i).Rate.String()}
		}
		doc.Entries = append(doc.Entries, e)
	}

	body, err := encMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding bundle: %w", err)
	}
	sum := blake3.Sum256(body)

	out := make([]byte, 0, headerSize+len(body)/2)
	out = append(out, magic...)
	out = append(out, FormatVersion)
	out = append(out, sum[:]...)
	return zstdEncoder.EncodeAll(body, out), nil
}

// Decode verifies a bundle and rebuilds its schedules
func Decode(data []byte) ([]*domain.BracketSchedule, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic) {
		return nil, fmt.Errorf("%w: missing header", ErrCorrupt)
	}
	if data[4] != FormatVersion {
		return nil, fmt.Errorf("unsupported bundle format version %d", data[4])
	}

	body, err := zstdDecoder.DecodeAll(data[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCorrupt, err)
	}
	sum := blake3.Sum256(body)
	if !bytes.Equal(sum[:], data[5:headerSize]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	var doc document
	if err := decMode.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrCorrupt, err)
	}

	schedules := make([]*domain.BracketSchedule, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		key := domain.ScheduleKey{
			Jurisdiction: e.Jurisdiction,
			FiscalYear:   e.FiscalYear,
			FilingStatus: domain.FilingStatus(e.FilingStatus),
		}
		if err := key.Validate(); err != nil {
			return nil, err
		}
		thresholds := make([]domain.BracketThreshold, len(e.Brackets))
		for i, b := range e.Brackets {
			rate, err := decimal.NewFromString(b.Rate)
			if err != nil {
				return nil, domain.WrapError(domain.KindInvalidSchedule, "decode_bundle",
					fmt.Sprintf("%s: rate %q", key, b.Rate), err)
			}
			thresholds[i] = domain.BracketThreshold{Upper: domain.ParseBound(b.Upper), Rate: rate}
		}
		s, err := domain.NewBracketSchedule(key, thresholds)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

// Export reads every schedule from r and writes the bundle to w. It returns
// the number of schedules exported.
func Export(ctx context.Context, r store.Reader, w io.Writer) (int, error) {
	keys, err := r.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list schedules: %w", err)
	}
	schedules := make([]*domain.BracketSchedule, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		s, err := r.Get(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", key, err)
		}
		schedules = append(schedules, s)
	}

	data, err := Encode(schedules)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("failed to write bundle: %w", err)
	}
	return len(schedules), nil
}

// ImportReport lists which keys an Import changed
type ImportReport struct {
	Written   []domain.ScheduleKey
	Unchanged []domain.ScheduleKey
}

// Import verifies the whole bundle before writing any schedule to w
func Import(ctx context.Context, rd io.Reader, w store.Writer) (*ImportReport, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	schedules, err := Decode(data)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for _, s := range schedules {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := w.Put(ctx, s)
		if err != nil {
			return report, fmt.Errorf("failed to store %s: %w", s.Key(), err)
		}
		if outcome == store.Unchanged {
			report.Unchanged = append(report.Unchanged, s.Key())
		} else {
			report.Written = append(report.Written, s.Key())
		}
	}
	return report, nil
}
