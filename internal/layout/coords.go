package layout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// CoordinateFormatError reports a data row that is not three numeric fields.
// Row is the 1-based physical line number in the file (a header line counts).
type CoordinateFormatError struct {
	Row   int
	Field string
	Err   error
}

func (e *CoordinateFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("coordinates: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("coordinates: row %d: field %s: %v", e.Row, e.Field, e.Err)
}

func (e *CoordinateFormatError) Unwrap() error { return e.Err }

var errTooFewFields = errors.New("want at least 3 fields (x,y,z)")

// Load reads a coordinate file from disk.
func Load(path string) ([]r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads comma-separated x,y,z rows in LED index order. The first row is
// treated as a header when any of its fields is not a number. Blank lines are
// skipped and columns past the third are ignored.
func Parse(r io.Reader) ([]r3.Vector, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []r3.Vector
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &CoordinateFormatError{Row: pe.Line, Err: pe.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if len(rec) < 3 {
			return nil, &CoordinateFormatError{Row: line, Err: errTooFewFields}
		}
		var v [3]float64
		for i, name := range [3]string{"x", "y", "z"} {
			f, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, &CoordinateFormatError{Row: line, Field: name, Err: err}
			}
			v[i] = f
		}
		out = append(out, r3.Vector{X: v[0], Y: v[1], Z: v[2]})
	}
	return out, nil
}

func isHeader(rec []string) bool {
	for _, f := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			return true
		}
	}
	return false
}

// Policy decides what happens when the file's row count differs from the
// configured LED count.
type Policy string

const (
	Reject   Policy = "reject"
	Truncate Policy = "truncate"
	Pad      Policy = "pad"
	FromFile Policy = "file"
)

// ParsePolicy validates a policy name; empty selects Reject.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Reject, nil
	case Reject, Truncate, Pad, FromFile:
		return p, nil
	default:
		return "", fmt.Errorf("unknown count mismatch policy %q (want reject, truncate, pad or file)", s)
	}
}

// CountMismatchError is returned by Fit when the policy cannot reconcile the
// loaded row count with the configured LED count.
type CountMismatchError struct {
	Loaded, Want int
	Policy       Policy
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("coordinates: file has %d rows, configured led count is %d (policy %s)", e.Loaded, e.Want, e.Policy)
}

// Fit reconciles pts with the configured LED count. Truncate only drops extra
// rows and Pad only appends origin points; the other direction is still an
// error. FromFile returns pts unchanged. want <= 0 means "whatever the file has".
func Fit(pts []r3.Vector, want int, p Policy) ([]r3.Vector, error) {
	n := len(pts)
	if want <= 0 || n == want || p == FromFile {
		return pts, nil
	}
	switch {
	case p == Truncate && n > want:
		return pts[:want:want], nil
	case p == Pad && n < want:
		out := make([]r3.Vector, want)
		copy(out, pts)
		return out, nil
	}
	return nil, &CountMismatchError{Loaded: n, Want: want, Policy: p}
}
