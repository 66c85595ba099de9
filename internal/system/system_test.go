package system

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestAudio(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.mp3")
	newer := filepath.Join(dir, "new.WAV")
	notAudio := filepath.Join(dir, "cover.png")
	for _, p := range []string{old, newer, notAudio} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))
	require.NoError(t, os.Chtimes(notAudio, base.Add(time.Hour), base.Add(time.Hour)))

	got, err := FindLatestAudio(dir)
	require.NoError(t, err)
	assert.Equal(t, newer, got)
}

func TestFindLatestAudioEmpty(t *testing.T) {
	_, err := FindLatestAudio(t.TempDir())
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("14.000000\n")
	require.NoError(t, err)
	assert.InDelta(t, 14.0, d, 1e-9)

	_, err = parseDuration("N/A")
	assert.Error(t, err)
	_, err = parseDuration("0")
	assert.Error(t, err)
}

func TestPickEncoder(t *testing.T) {
	assert.Equal(t, "h264_nvenc", pickEncoder(" V....D h264_nvenc  NVIDIA NVENC H.264 encoder"))
	assert.Equal(t, "h264_videotoolbox", pickEncoder("h264_nvenc\nh264_videotoolbox"))
	assert.Equal(t, "libx264", pickEncoder(" V....D libx264"))
}

func TestScanLinesSplitsCarriageReturns(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("Rendered 1/10\rRendered 2/10\r\ndone\nlast"))
	sc.Split(scanLines)
	var lines []string
	for sc.Scan() {
		if sc.Text() != "" {
			lines = append(lines, sc.Text())
		}
	}
	assert.Equal(t, []string{"Rendered 1/10", "Rendered 2/10", "done", "last"}, lines)
}

func TestRunStreaming(t *testing.T) {
	var lines []string
	err := RunStreaming(context.Background(), "", "sh", []string{"-c", "echo one; echo two 1>&2"}, func(l string) {
		lines = append(lines, l)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, lines)
}

func TestRunStreamingFailureCarriesTail(t *testing.T) {
	err := RunStreaming(context.Background(), "", "sh", []string{"-c", "echo boom 1>&2; exit 3"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunStreamingCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunStreaming(ctx, "", "sh", []string{"-c", "sleep 5"}, nil)
	assert.Error(t, err)
}

func TestLineTailKeepsLast(t *testing.T) {
	tail := &lineTail{max: 2}
	tail.add("a")
	tail.add("b")
	tail.add("c")
	assert.Equal(t, "b\nc", tail.String())
}
