package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// document is a JSON object that remembers the order of its keys, so a record can be
// rewritten without reordering or dropping fields this package does not model.
type document struct {
	keys   []string
	values map[string]json.RawMessage
}

func (d *document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: got %v", ErrNotObject, tok)
	}

	d.keys = nil
	d.values = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode %q: %w", key, err)
		}

		// Duplicate keys keep their first position and their last value.
		if _, seen := d.values[key]; !seen {
			d.keys = append(d.keys, key)
		}
		d.values[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (d document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := marshalValue(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(d.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *document) has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// set stores v under key. New keys go to the end of the object.
func (d *document) set(key string, v any) error {
	encoded, err := marshalValue(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if d.values == nil {
		d.values = make(map[string]json.RawMessage)
	}
	if _, seen := d.values[key]; !seen {
		d.keys = append(d.keys, key)
	}
	d.values[key] = encoded
	return nil
}

// decode unmarshals the value stored under key into v. Missing keys leave v untouched.
func (d *document) decode(key string, v any) error {
	raw, ok := d.values[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid %q: %w", key, err)
	}
	return nil
}

func (d document) clone() document {
	c := document{
		keys:   append([]string(nil), d.keys...),
		values: make(map[string]json.RawMessage, len(d.values)),
	}
	for k, v := range d.values {
		c.values[k] = v
	}
	return c
}

// isNull reports whether key is missing or holds JSON null.
func (d *document) isNull(key string) bool {
	raw, ok := d.values[key]
	return !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// marshalValue encodes v without HTML escaping so URLs keep their '&'.
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
