package dropdown

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    VersionMap
		wantErr bool
	}{
		{"empty", `{}`, VersionMap{}, false},
		{
			"document order",
			`{"master": "master/", "v0.9.0": "v0.9.0/", "v0.10.0": "v0.10.0/"}`,
			VersionMap{{"master", "master/"}, {"v0.9.0", "v0.9.0/"}, {"v0.10.0", "v0.10.0/"}},
			false,
		},
		{
			"repeated label keeps first position",
			`{"a": "1", "b": "2", "a": "3"}`,
			VersionMap{{"a", "3"}, {"b", "2"}},
			false,
		},
		{
			"coerced values",
			`{"int": 10, "float": 1.5, "bool": false, "null": null}`,
			VersionMap{{"int", "10"}, {"float", "1.5"}, {"bool", "false"}, {"null", ""}},
			false,
		},
		{"trailing whitespace", "{\"a\": \"b\"}\n", VersionMap{{"a", "b"}}, false},
		{"not json", `<html>`, nil, true},
		{"truncated", `{"a": "b"`, nil, true},
		{"array", `["a"]`, nil, true},
		{"string", `"a"`, nil, true},
		{"trailing data", `{"a": "b"} {}`, nil, true},
		{"empty body", ``, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionMap_JSON(t *testing.T) {
	var m VersionMap
	m.Set("v2", "v2/")
	m.Set("v1", "v1/")
	m.Set("v2", "latest/")

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"v2":"latest/","v1":"v1/"}`, string(data))

	var got VersionMap
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m, got)

	path, ok := got.Get("v1")
	assert.True(t, ok)
	assert.Equal(t, "v1/", path)
	_, ok = got.Get("v3")
	assert.False(t, ok)
}

func TestFetch(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := serveJSON(t, http.StatusOK, `{"v1": "v1/"}`)

		got, err := Fetch(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, VersionMap{{"v1", "v1/"}}, got)
	})

	t.Run("server error", func(t *testing.T) {
		srv := serveJSON(t, http.StatusInternalServerError, `{}`)

		_, err := Fetch(context.Background(), srv.Client(), srv.URL)
		assert.ErrorIs(t, err, ErrUnavailable)
		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, srv.URL, fe.Location)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("bad location", func(t *testing.T) {
		_, err := Fetch(context.Background(), nil, "://nowhere")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
