package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioCommand(t *testing.T) {
	tests := []struct {
		name        string
		backend     string
		wantJSON    bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:    "heap text",
			backend: "heap",
			wantContain: []string{
				"Detected memory leaks!",
				"scenario.go(",
				"Size: 3",
				"Size: 4",
				"7 bytes leaked in 2 blocks",
			},
		},
		{
			name:        "arena text",
			backend:     "arena",
			wantContain: []string{"7 bytes leaked in 2 blocks"},
		},
		{
			name:        "mmap json",
			backend:     "mmap",
			wantJSON:    true,
			wantContain: []string{`"blocks": 2`, `"bytes": 7`},
		},
		{
			name:    "unknown backend",
			backend: "jemalloc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			backend = tt.backend
			jsonOut = tt.wantJSON
			quiet = false

			output, err := captureOutput(t, runScenario)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err, "output: %s", output)
			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestScenarioReportShape(t *testing.T) {
	resetFlags(t)
	jsonOut = true

	output, err := captureOutput(t, runScenario)
	require.NoError(t, err)

	var rep reportJSON
	require.NoError(t, json.Unmarshal([]byte(output), &rep))
	require.Len(t, rep.Leaks, 2)

	sizes := []uint64{rep.Leaks[0].Size, rep.Leaks[1].Size}
	assert.ElementsMatch(t, []uint64{3, 4}, sizes)
	for _, l := range rep.Leaks {
		assert.Contains(t, l.File, "scenario.go")
		assert.NotZero(t, l.Line)
		assert.Regexp(t, `^0x[0-9a-f]+$`, l.Address)
	}
}

func TestScenarioQuiet(t *testing.T) {
	resetFlags(t)
	quiet = true

	output, err := captureOutput(t, runScenario)
	require.NoError(t, err)
	assert.Empty(t, output)
}

func TestPrintReportEmpty(t *testing.T) {
	resetFlags(t)

	output, err := captureOutput(t, func() error { return printReport(nil) })
	require.NoError(t, err)
	assert.Contains(t, output, "No memory leaks detected")
}
