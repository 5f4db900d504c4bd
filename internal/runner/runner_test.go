package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requirePython(t *testing.T) {
	t.Helper()
	r := &Runner{}
	if _, err := r.Interpreter(); err != nil {
		t.Skip("python interpreter not available")
	}
}

func TestRunCapturesStdout(t *testing.T) {
	requirePython(t)

	r := &Runner{Timeout: 10 * time.Second}
	res, err := r.Run(context.Background(), `print("hello")`)
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Contains(t, res.Stdout, "hello\n")
	require.False(t, res.TimedOut)
	require.False(t, res.SavedFile)
}

func TestRunReportsNonZeroExit(t *testing.T) {
	requirePython(t)

	r := &Runner{Timeout: 10 * time.Second}
	res, err := r.Run(context.Background(), "import sys\nsys.stderr.write('boom')\nsys.exit(3)\n")
	require.NoError(t, err, "non-zero child exit must not be a host error")
	require.Equal(t, 3, res.ExitCode)
	require.Contains(t, res.Stderr, "boom")
}

func TestRunDetectsSaveSignal(t *testing.T) {
	requirePython(t)

	r := &Runner{Timeout: 10 * time.Second}
	res, err := r.Run(context.Background(), `print("Graph Saved To: out.png")`)
	require.NoError(t, err)
	require.True(t, res.SavedFile)
}

func TestRunTimesOut(t *testing.T) {
	requirePython(t)

	r := &Runner{Timeout: 2 * time.Second}
	start := time.Now()
	res, err := r.Run(context.Background(), "import time\ntime.sleep(60)\n")
	require.NoError(t, err)
	require.True(t, res.TimedOut)
	require.Less(t, time.Since(start), 30*time.Second)
}

func TestRunCleansUpTempFile(t *testing.T) {
	requirePython(t)

	before := tempScripts(t)
	r := &Runner{Timeout: 10 * time.Second}
	_, err := r.Run(context.Background(), `print("x")`)
	require.NoError(t, err)
	require.Equal(t, before, tempScripts(t), "temp script should be removed after the run")
}

func TestRunCleansUpTempFileOnTimeout(t *testing.T) {
	requirePython(t)

	before := tempScripts(t)
	r := &Runner{Timeout: 1 * time.Second}
	res, err := r.Run(context.Background(), "import time\ntime.sleep(30)\n")
	require.NoError(t, err)
	require.True(t, res.TimedOut)
	require.Equal(t, before, tempScripts(t), "temp script should be removed after a timeout")
}

func TestRunRejectsEmptyCode(t *testing.T) {
	r := &Runner{}
	_, err := r.Run(context.Background(), "   \n")
	require.Error(t, err)
}

func TestRunMissingInterpreter(t *testing.T) {
	r := &Runner{PythonBin: filepath.Join(t.TempDir(), "no-such-python")}
	_, err := r.Run(context.Background(), `print("x")`)
	require.Error(t, err)
}

func tempScripts(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "smartcli-*.py"))
	require.NoError(t, err)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), "smartcli-") {
			out = append(out, m)
		}
	}
	return out
}
