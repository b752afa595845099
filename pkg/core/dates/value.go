package dates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layout is the canonical calendar date layout used throughout the module
const Layout = "2006-01-02"

// NoDate is the bucket key used for selections without a date
const NoDate = "no-date"

var canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Kind identifies which representation a DateValue holds
type Kind int

const (
	KindNone Kind = iota
	KindISO
	KindTimestamp
	KindTime
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindISO:
		return "iso"
	case KindTimestamp:
		return "timestamp"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}

// DateValue is a date as stored in an application or job posting document.
// Stored documents carry dates as plain strings, exported timestamps
// ({seconds, nanoseconds}), native datetimes or occasionally something else
// entirely. The representation is decided once while decoding.
type DateValue struct {
	kind    Kind
	iso     string
	seconds int64
	nanos   int64
	t       time.Time
	raw     string
}

// None returns an empty DateValue
func None() DateValue {
	return DateValue{}
}

// FromString wraps a date string. An empty string is treated as no date.
func FromString(s string) DateValue {
	if s == "" {
		return DateValue{}
	}
	return DateValue{kind: KindISO, iso: s}
}

// FromTimestamp wraps a seconds/nanoseconds timestamp
func FromTimestamp(seconds, nanos int64) DateValue {
	return DateValue{kind: KindTimestamp, seconds: seconds, nanos: nanos}
}

// FromTime wraps a time.Time
func FromTime(t time.Time) DateValue {
	return DateValue{kind: KindTime, t: t}
}

// FromRaw wraps a value of unrecognised shape by its textual form
func FromRaw(raw string) DateValue {
	return DateValue{kind: KindOther, raw: raw}
}

// Kind returns the representation held by v
func (v DateValue) Kind() Kind {
	return v.kind
}

// IsZero reports whether v holds no date at all
func (v DateValue) IsZero() bool {
	return v.kind == KindNone
}

// Canonical resolves v to a YYYY-MM-DD string using local calendar fields.
// It never panics; unresolvable values yield "" and an error describing why.
func (v DateValue) Canonical() (string, error) {
	return v.CanonicalIn(time.Local)
}

// CanonicalIn is Canonical with an explicit location for calendar fields
func (v DateValue) CanonicalIn(loc *time.Location) (string, error) {
	switch v.kind {
	case KindNone:
		return "", nil
	case KindISO:
		return v.iso, nil
	case KindTimestamp:
		return time.Unix(v.seconds, v.nanos).In(loc).Format(Layout), nil
	case KindTime:
		if v.t.IsZero() {
			return "", fmt.Errorf("zero time value")
		}
		return v.t.In(loc).Format(Layout), nil
	default:
		if canonicalPattern.MatchString(v.raw) {
			return v.raw, nil
		}
		return "", fmt.Errorf("unrecognised date value %q", v.raw)
	}
}

// Equal reports whether v and o hold the same representation and value
func (v DateValue) Equal(o DateValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindISO:
		return v.iso == o.iso
	case KindTimestamp:
		return v.seconds == o.seconds && v.nanos == o.nanos
	case KindTime:
		return v.t.Equal(o.t)
	default:
		return v.raw == o.raw
	}
}

// ToDateString resolves v to a canonical date, or "" with an error when it
// cannot be resolved
func ToDateString(v DateValue) (string, error) {
	return v.Canonical()
}

// String returns the canonical form of v, or "" if it cannot be resolved
func (v DateValue) String() string {
	s, _ := v.Canonical()
	return s
}

type timestampDoc struct {
	Seconds      *float64 `json:"seconds" bson:"seconds"`
	Nanoseconds  *float64 `json:"nanoseconds" bson:"nanoseconds"`
	USeconds     *float64 `json:"_seconds" bson:"_seconds"`
	UNanoseconds *float64 `json:"_nanoseconds" bson:"_nanoseconds"`
}

// timestamp extracts the seconds/nanos pair; ok is false when seconds is missing or zero
func (d timestampDoc) timestamp() (seconds, nanos int64, ok bool) {
	sec := d.Seconds
	if sec == nil {
		sec = d.USeconds
	}
	if sec == nil || *sec == 0 || math.IsNaN(*sec) || math.IsInf(*sec, 0) {
		return 0, 0, false
	}
	ns := d.Nanoseconds
	if ns == nil {
		ns = d.UNanoseconds
	}
	if ns != nil {
		nanos = int64(*ns)
	}
	return int64(*sec), nanos, true
}

// UnmarshalJSON decodes strings, exported timestamp objects and null
func (v *DateValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = None()
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("failed to decode date string: %w", err)
		}
		*v = FromString(s)
	case '{':
		var doc timestampDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			*v = FromRaw(string(trimmed))
			return nil
		}
		if sec, ns, ok := doc.timestamp(); ok {
			*v = FromTimestamp(sec, ns)
			return nil
		}
		*v = FromRaw(string(trimmed))
	default:
		*v = FromRaw(string(trimmed))
	}
	return nil
}

// MarshalJSON encodes v in the shape it was decoded from
func (v DateValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNone:
		return []byte("null"), nil
	case KindISO:
		return json.Marshal(v.iso)
	case KindTimestamp:
		return json.Marshal(map[string]int64{"seconds": v.seconds, "nanoseconds": v.nanos})
	case KindTime:
		return json.Marshal(map[string]int64{"seconds": v.t.Unix(), "nanoseconds": int64(v.t.Nanosecond())})
	default:
		if json.Valid([]byte(v.raw)) {
			return []byte(v.raw), nil
		}
		return json.Marshal(v.raw)
	}
}

// UnmarshalBSONValue decodes strings, BSON datetimes and timestamps, and
// embedded timestamp documents
func (v *DateValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Null, bsontype.Undefined:
		*v = None()
	case bsontype.String:
		*v = FromString(rv.StringValue())
	case bsontype.DateTime:
		*v = FromTime(time.UnixMilli(rv.DateTime()))
	case bsontype.Timestamp:
		sec, _ := rv.Timestamp()
		*v = FromTimestamp(int64(sec), 0)
	case bsontype.EmbeddedDocument:
		var doc timestampDoc
		if err := rv.Unmarshal(&doc); err != nil {
			*v = FromRaw(rv.String())
			return nil
		}
		if sec, ns, ok := doc.timestamp(); ok {
			*v = FromTimestamp(sec, ns)
			return nil
		}
		*v = FromRaw(rv.String())
	default:
		*v = FromRaw(rv.String())
	}
	return nil
}

// MarshalBSONValue stores timestamps and times as BSON datetimes
func (v DateValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch v.kind {
	case KindNone:
		return bsontype.Null, nil, nil
	case KindISO:
		return bson.MarshalValue(v.iso)
	case KindTimestamp:
		return bson.MarshalValue(primitive.NewDateTimeFromTime(time.Unix(v.seconds, v.nanos)))
	case KindTime:
		return bson.MarshalValue(primitive.NewDateTimeFromTime(v.t))
	default:
		return bson.MarshalValue(v.raw)
	}
}
