package dropdown

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// ErrUnavailable is reported for every failure to obtain the version list:
// network errors, non-2xx responses and malformed JSON alike.
var ErrUnavailable = errors.New("version list unavailable")

// Version is one entry of a VersionMap.
type Version struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// VersionMap maps version labels to URL path suffixes, in the order the labels
// appear in the source document.
type VersionMap []Version

// Get returns the path registered for label.
func (m VersionMap) Get(label string) (string, bool) {
	for _, v := range m {
		if v.Label == label {
			return v.Path, true
		}
	}
	return "", false
}

// Set adds label or replaces its path in place.
func (m *VersionMap) Set(label, path string) {
	for i := range *m {
		if (*m)[i].Label == label {
			(*m)[i].Path = path
			return
		}
	}
	*m = append(*m, Version{Label: label, Path: path})
}

// MarshalJSON writes the map as a flat JSON object, keeping entry order.
func (m VersionMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, v := range m {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(v.Label)
		if err != nil {
			return nil, err
		}
		p, err := json.Marshal(v.Path)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, p...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON reads a flat JSON object, see Decode.
func (m *VersionMap) UnmarshalJSON(data []byte) error {
	out, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// FetchError wraps the underlying cause of an unavailable version list.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return ErrUnavailable.Error() + ": " + e.Location + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports every FetchError as ErrUnavailable.
func (e *FetchError) Is(target error) bool { return target == ErrUnavailable }

// Fetch retrieves and decodes the version list at location. Any failure is
// returned as a *FetchError.
func Fetch(ctx context.Context, client *http.Client, location string) (VersionMap, error) {
	m, err := fetch(ctx, client, location)
	if err != nil {
		return nil, &FetchError{Location: location, Err: err}
	}
	return m, nil
}

func fetch(ctx context.Context, client *http.Client, location string) (VersionMap, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting version list")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("unexpected status: %s", resp.Status)
	}
	return Decode(resp.Body)
}

// Decode reads a flat JSON object of label to path. Values that are not
// strings are coerced. A label repeated in the document keeps its first
// position and takes the last value.
func Decode(r io.Reader) (VersionMap, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "decoding version list")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("decoding version list: expected object, got %v", tok)
	}

	m := VersionMap{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "decoding version label")
		}
		label, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("decoding version label: unexpected %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "decoding path for %q", label)
		}
		path := cast.ToString(value)

		if i, ok := index[label]; ok {
			m[i].Path = path
			continue
		}
		index[label] = len(m)
		m = append(m, Version{Label: label, Path: path})
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "decoding version list")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decoding version list: trailing data after object")
	}
	return m, nil
}
