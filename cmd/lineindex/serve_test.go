package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/lineindex/pkg/serve"
)

func TestServeCommand_Exists(t *testing.T) {
	// Verify serve command is registered
	cmd, _, err := rootCmd.Find([]string{"serve"})
	assert.NoError(t, err)
	assert.NotNil(t, cmd)
	assert.Equal(t, "serve", cmd.Name())
}

func TestServeCommand_Session(t *testing.T) {
	path := writeFile(t, "sample.txt", sample)
	requests := strings.Join([]string{
		`{"type":"open","payload":{"source":` + quoteJSON(path) + `}}`,
		`{"type":"position_of","payload":{"offset":6}}`,
		`{"type":"open","payload":{"source":"-"}}`,
		`{"type":"drain"}`,
		`{"type":"close"}`,
	}, "\n") + "\n"

	out, _, err := execute(t, requests, "serve", "--buffer-size", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)

	var resps []serve.Response
	for _, line := range lines {
		var resp serve.Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		require.True(t, resp.Success, "%s: %s", resp.Type, resp.Error)
		resps = append(resps, resp)
	}

	assert.Equal(t, "ready", resps[0].Type)
	assert.JSONEq(t, `{"source":`+quoteJSON(path)+`,"size":12}`, string(resps[1].Data))
	assert.JSONEq(t, `{"offset":6,"line":1,"column":2}`, string(resps[2].Data))
	assert.JSONEq(t, `{"length":0,"lines":1}`, string(resps[4].Data), "stdin carries requests, so - is empty")
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
