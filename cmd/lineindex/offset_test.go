package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/lineindex/pkg/stream"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input        string
		line, column int64
		wantErr      bool
	}{
		{"1:2", 1, 2, false},
		{"0:0", 0, 0, false},
		{"10:300", 10, 300, false},
		{"-1:0", -1, 0, false},
		{"12", 0, 0, true},
		{"a:1", 0, 0, true},
		{"1:b", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			line, column, err := parsePosition(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestOffset(t *testing.T) {
	path := writeFile(t, "sample.txt", sample)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"zero based", []string{"offset", path, "1:2", "0:0"}, "1:2\t6\n0:0\t0\n"},
		{"one based", []string{"offset", "--one-based", path, "2:3", "3:1"}, "2:3\t6\n3:1\t9\n"},
		{"column past line end", []string{"offset", path, "0:6"}, "0:6\t6\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestOffset_JSON(t *testing.T) {
	path := writeFile(t, "sample.txt", sample)

	out, _, err := execute(t, "", "offset", "--format", "json", path, "2:1")

	require.NoError(t, err)
	var results []resolvedPosition
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.Equal(t, []resolvedPosition{{Line: 2, Column: 1, Offset: 10}}, results)
}

func TestOffset_Errors(t *testing.T) {
	path := writeFile(t, "sample.txt", sample)

	_, _, err := execute(t, "", "offset", path, "3:0")
	assert.ErrorIs(t, err, stream.ErrInvalidPosition)

	_, _, err = execute(t, "", "offset", "--", path, "-1:0")
	assert.ErrorIs(t, err, stream.ErrInvalidPosition)

	_, _, err = execute(t, "", "offset", "--one-based", path, "0:1")
	assert.Error(t, err)

	_, _, err = execute(t, "", "offset", path, "nonsense")
	assert.ErrorContains(t, err, "want line:column")
}
