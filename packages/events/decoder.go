package events

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Kind names an event in a JSON-lines stream
type Kind string

const (
	KindStart    Kind = "start"
	KindSuite    Kind = "suite"
	KindSuiteEnd Kind = "suite end"
	KindPass     Kind = "pass"
	KindFail     Kind = "fail"
	KindPending  Kind = "pending"
	KindEnd      Kind = "end"
)

// MaxLineSize bounds a single encoded event; failure stacks can be long.
const MaxLineSize = 4 * 1024 * 1024

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalidJSON  = errors.New("invalid JSON")
)

// Record is one decoded line of an event stream
type Record struct {
	Kind     Kind
	Line     int
	Title    string
	Duration time.Duration
	Slow     time.Duration
	Failure  *Failure
}

// Decoder reads Records from a JSON-lines stream
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Decoder{scanner: s}
}

// Next returns the next record, or io.EOF once the stream is exhausted.
// Blank lines are skipped.
func (d *Decoder) Next() (Record, error) {
	for d.scanner.Scan() {
		d.line++
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return Record{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		rec.Line = d.line
		return rec, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading event stream: %w", err)
	}
	return Record{}, io.EOF
}

// ParseRecord decodes a single JSON event object.
func ParseRecord(line string) (Record, error) {
	if !gjson.Valid(line) {
		return Record{}, ErrInvalidJSON
	}
	doc := gjson.Parse(line)
	if !doc.IsObject() {
		return Record{}, fmt.Errorf("%w: expected an object", ErrInvalidJSON)
	}

	rec := Record{
		Kind:  Kind(doc.Get("event").String()),
		Title: doc.Get("title").String(),
	}
	switch rec.Kind {
	case KindStart, KindSuite, KindSuiteEnd, KindPass, KindPending, KindEnd:
	case KindFail:
		rec.Failure = parseFailure(doc.Get("err"))
	default:
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownEvent, rec.Kind)
	}

	rec.Duration = millis(doc.Get("duration"))
	rec.Slow = millis(doc.Get("slow"))
	return rec, nil
}

// maxMillis is the largest millisecond value a time.Duration can hold.
const maxMillis = float64(math.MaxInt64) / float64(time.Millisecond)

// millis converts a millisecond value to a duration. Missing, malformed and
// negative values become zero; values too large for a Duration saturate.
func millis(v gjson.Result) time.Duration {
	if !v.Exists() {
		return 0
	}
	ms := v.Float()
	if ms <= 0 || math.IsNaN(ms) {
		return 0
	}
	if ms >= maxMillis {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func parseFailure(v gjson.Result) *Failure {
	f := &Failure{
		Message: v.Get("message").String(),
		Stack:   v.Get("stack").String(),
	}
	if a := v.Get("actual"); a.Exists() {
		s := valueString(a)
		f.Actual = &s
	}
	if e := v.Get("expected"); e.Exists() {
		s := valueString(e)
		f.Expected = &s
	}
	if sd := v.Get("showDiff"); sd.Exists() {
		b := sd.Bool()
		f.ShowDiff = &b
	}
	return f
}

// valueString renders strings verbatim and other JSON values as raw JSON.
func valueString(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}
