package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Info("Harness", "should not appear")
	Warn("Harness", "careful %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "careful 1")
	assert.Contains(t, out, "subsystem=Harness")
}

func TestThreadLoggerCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, FormatJSON, &buf)

	test := NewTestLogger("JSTest", "jstests/core/find.js")
	thread := test.NewThreadLogger(2)
	thread.Error(fmt.Errorf("boom"), "client exited")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "client exited", entry["msg"])
	assert.Equal(t, "JSTest", entry["subsystem"])
	assert.Equal(t, "jstests/core/find.js", entry["test"])
	assert.Equal(t, float64(2), entry["thread"])
	assert.Equal(t, "boom", entry["error"])

	assert.Equal(t, "jstests/core/find.js:2", thread.Name())
	assert.Equal(t, "jstests/core/find.js", test.Name())
}

func TestThreadLoggersDoNotShareAttributes(t *testing.T) {
	test := NewTestLogger("JSTest", "a.js")
	first := test.NewThreadLogger(0)
	second := test.NewThreadLogger(1)

	assert.Len(t, test.attrs, 1)
	assert.Len(t, first.attrs, 2)
	assert.Equal(t, int64(0), first.attrs[1].Value.Int64())
	assert.Equal(t, int64(1), second.attrs[1].Value.Int64())
}

func TestWriterLogsEachLine(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	w := NewTestLogger("JSTest", "a.js").Writer(LevelInfo, "stdout")
	_, err := w.Write([]byte("first line\nsecond "))
	require.NoError(t, err)
	_, err = w.Write([]byte("line\ntrailing"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "first line")
	assert.Contains(t, lines[1], "\"second line\"")
	assert.Contains(t, lines[2], "trailing")
	assert.Contains(t, lines[0], "stream=stdout")
}

func TestWriterKeepsLoggingAfterOverlongLine(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	w := NewTestLogger("JSTest", "a.js").Writer(LevelInfo, "stderr")
	_, err := w.Write([]byte("before\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("x", 2*MaxLineLength) + "\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("after assert.eq failed\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "before")
	assert.Contains(t, lines[1], fmt.Sprintf("[truncated %d bytes]", MaxLineLength))
	assert.Less(t, len(lines[1]), MaxLineLength+1024)
	assert.Contains(t, lines[2], "after assert.eq failed")
}
