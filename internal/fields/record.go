package fields

import (
	"bytes"
	"encoding/json"
)

// Record is one extracted report: every schema field mapped to a value,
// possibly empty, in the declared column order. Records are immutable once
// returned by the extractor.
type Record struct {
	name   string
	order  []string
	values map[string]string
}

func newRecord(name string, order []string) Record {
	values := make(map[string]string, len(order))
	for _, f := range order {
		values[f] = ""
	}
	return Record{name: name, order: order, values: values}
}

func (r Record) set(field, value string) {
	r.values[field] = value
}

// Name returns the source document's display name.
func (r Record) Name() string { return r.name }

// Fields returns the schema field names in declared order.
func (r Record) Fields() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the value extracted for field, "" when the field is unknown.
func (r Record) Get(field string) string {
	return r.values[field]
}

// Values returns the field values in declared order, ready for a sheet row.
func (r Record) Values() []string {
	out := make([]string, len(r.order))
	for i, f := range r.order {
		out[i] = r.values[f]
	}
	return out
}

// MarshalJSON renders the record as a JSON object whose keys follow the
// declared field order instead of Go's sorted map order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
