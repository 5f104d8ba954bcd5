package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

// maxBodySize caps action request bodies. Records and options documents
// are small; whole data sets come from the configured source.
const maxBodySize = 1 << 20

// params are the flattened action parameters of a request. htmx posts form
// values and hx-vals; API clients post JSON. Both end up here as strings.
type params struct {
	values map[string]string
	raw    map[string]json.RawMessage
}

// readParams merges query values with the request body.
func readParams(r *http.Request) (params, error) {
	p := params{values: make(map[string]string)}
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			p.values[key] = vals[0]
		}
	}

	if r.Body == nil || r.Method == http.MethodGet {
		return p, nil
	}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
		if err != nil {
			return p, fmt.Errorf("%w: read body: %v", ErrBadRequest, err)
		}
		if len(body) > maxBodySize {
			return p, fmt.Errorf("%w: body exceeds %d bytes", ErrBadRequest, maxBodySize)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return p, nil
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&p.raw); err != nil {
			return p, fmt.Errorf("%w: decode body: %v", ErrBadRequest, err)
		}
		for key, msg := range p.raw {
			p.values[key] = jsonString(msg)
		}
		return p, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return p, fmt.Errorf("%w: parse form: %v", ErrBadRequest, err)
	}
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			p.values[key] = vals[0]
		}
	}
	return p, nil
}

// jsonString flattens a JSON value: strings lose their quotes, null is
// empty, and everything else keeps its compact JSON text.
func jsonString(msg json.RawMessage) string {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(msg)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// Has reports whether key was sent at all.
func (p params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// String returns the value of key, or "".
func (p params) String(key string) string {
	return p.values[key]
}

// Int parses key as an integer.
func (p params) Int(key string) (int, error) {
	v, ok := p.values[key]
	if !ok || strings.TrimSpace(v) == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRequest, key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
	}
	return n, nil
}

// Bool parses key as a boolean, returning def when it is absent.
// "1", "on", "yes" and strconv.ParseBool spellings are accepted.
func (p params) Bool(key string, def bool) (bool, error) {
	v, ok := p.values[key]
	if !ok || v == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be a boolean", ErrBadRequest, key)
	}
	return b, nil
}

// Required returns the value of key or ErrBadRequest when it is blank.
func (p params) Required(key string) (string, error) {
	v := strings.TrimSpace(p.values[key])
	if v == "" {
		return "", fmt.Errorf("%w: missing %s", ErrBadRequest, key)
	}
	return v, nil
}

// Record decodes key as a JSON object. ok is false when key is absent.
func (p params) Record(key string) (rec view.Record, ok bool, err error) {
	v := p.values[key]
	if v == "" {
		return nil, false, nil
	}
	dec := json.NewDecoder(strings.NewReader(v))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, true, fmt.Errorf("%w: %s must be a JSON object: %v", ErrBadRequest, key, err)
	}
	if rec == nil {
		return nil, true, fmt.Errorf("%w: %s must be a JSON object", ErrBadRequest, key)
	}
	return numbersToFloat(rec), true, nil
}

// numbersToFloat converts json.Number cells the way encoding/json would
// decode them into any, so inserted records compare like loaded ones.
func numbersToFloat(rec view.Record) view.Record {
	for k, v := range rec {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				rec[k] = f
			}
		}
	}
	return rec
}

// Raw returns the undecoded JSON for key from a JSON body.
func (p params) Raw(key string) (json.RawMessage, bool) {
	msg, ok := p.raw[key]
	return msg, ok
}
