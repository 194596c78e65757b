package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestScoreCommandJSON(t *testing.T) {
	out := run(t, "", "score", "--json", "--log-level", "error", "I love it", "   ")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var ok, failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ok))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Equal(t, true, ok["success"])
	assert.Equal(t, "positive", ok["sentiment"])
	assert.Equal(t, false, failed["success"])
}

func TestPredictInteractiveFallback(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "this is awful\n\nquit\nnever scored\n", "predict", "--artifacts", dir, "--log-level", "error")

	assert.Contains(t, out, "lexicon backend")
	assert.Contains(t, out, "negative (confidence")
	assert.NotContains(t, out, "never scored")
}
