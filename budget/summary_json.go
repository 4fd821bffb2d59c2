package budget

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TotalKey is the summary key holding the trip-wide entry.
const TotalKey = "total"

// Keys returns the object key each day is written under. Days normally use
// their label; a label that is empty, reserved or already taken gets a
// " #<day number>" suffix so no day overwrites another.
func (s *Summary) Keys() []string {
	keys := make([]string, len(s.Days))
	seen := map[string]bool{TotalKey: true}
	for i, d := range s.Days {
		k := d.Label
		if k == "" || seen[k] {
			k = d.Label + " #" + strconv.Itoa(d.Index+1)
		}
		for seen[k] {
			k += "'"
		}
		seen[k] = true
		keys[i] = k
	}
	return keys
}

// MarshalJSON writes the summary as an object of day entries, in itinerary
// order, followed by "total".
func (s *Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.Keys() {
		if err := writeMember(&buf, k, s.Days[i].BudgetEntry); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, TotalKey, s.Total); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, e BudgetEntry) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(e)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
