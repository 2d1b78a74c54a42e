package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/zeebo/blake3"
)

// MarshalSchedule encodes a schedule as its wire payload: a JSON object
// mapping each upper bound to its rate, e.g.
//
//	{"9950":0.1,"40525":0.12,"inf":0.37}
//
// Keys are written in ascending bound order with the open bound last, so the
// same schedule always produces the same bytes.
func MarshalSchedule(schedule *domain.BracketSchedule) ([]byte, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < schedule.Len(); i++ {
		bracket := schedule.At(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(bracket.Upper.String())
		if err != nil {
			return nil, fmt.Errorf("failed to encode bound %s: %w", bracket.Upper, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(bracket.Rate.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalSchedule decodes a wire payload stored under key. Numeric keys
// become finite bounds and any other key becomes the open top bound; the
// brackets are sorted ascending and the result is validated.
func UnmarshalSchedule(key domain.ScheduleKey, data []byte) (*domain.BracketSchedule, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]json.Number
	if err := decoder.Decode(&raw); err != nil {
		return nil, domain.WrapError(domain.KindInvalidSchedule, "decode_schedule", key.String(), err)
	}

	thresholds := make([]domain.BracketThreshold, 0, len(raw))
	for bound, number := range raw {
		rate, err := decimal.NewFromString(number.String())
		if err != nil {
			return nil, domain.WrapError(domain.KindInvalidSchedule, "decode_schedule",
				fmt.Sprintf("%s: rate %q for bound %q", key, number, bound), err)
		}
		thresholds = append(thresholds, domain.BracketThreshold{
			Upper: domain.ParseBound(bound),
			Rate:  rate,
		})
	}
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].Upper.Less(thresholds[j].Upper)
	})

	return domain.NewBracketSchedule(key, thresholds)
}

// Digest returns the hex BLAKE3-256 digest of a payload
func Digest(payload []byte) string {
	sum := blake3.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// ScheduleDigest is the digest of a schedule's wire payload
func ScheduleDigest(schedule *domain.BracketSchedule) (string, error) {
	payload, err := MarshalSchedule(schedule)
	if err != nil {
		return "", err
	}
	return Digest(payload), nil
}

// SortKeys orders keys by jurisdiction, fiscal year, then filing status
// in their declared order.
func SortKeys(keys []domain.ScheduleKey) {
	rank := make(map[domain.FilingStatus]int)
	for i, fs := range domain.FilingStatuses() {
		rank[fs] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Jurisdiction != b.Jurisdiction {
			return a.Jurisdiction < b.Jurisdiction
		}
		if a.FiscalYear != b.FiscalYear {
			return a.FiscalYear < b.FiscalYear
		}
		return rank[a.FilingStatus] < rank[b.FilingStatus]
	})
}
