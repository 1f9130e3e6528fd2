package core

import (
	"strconv"
	"time"
)

// timestampLayout is RFC 3339 with a fixed millisecond fraction.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp marks when an event was raised. It is kept in UTC and encodes
// with millisecond precision.
type Timestamp time.Time

// Now returns the current UTC time
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string { return t.Time().UTC().Format(timestampLayout) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(tm.UTC())
	return nil
}
