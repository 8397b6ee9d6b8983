package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnstrCanonicalText(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewConnstrCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"dbname=foo user=u host=prod1 connect_timeout=3"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "conninfo: host=prod1 dbname=foo user=u connect_timeout=3")
	assert.Contains(t, output, "uri:      postgresql://u@prod1/foo?connect_timeout=3")
}

func TestConnstrJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewConnstrCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"host=db dbname=foo"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "host=db dbname=foo", resp["conninfo"])
	assert.Equal(t, "postgresql://db/foo", resp["uri"])
}

func TestConnstrParseError(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewConnstrCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"host='unterminated"})

	err := cmd.Execute()
	require.Error(t, err)
}
