package present

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAnswerPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false, "")
	p.Answer("Paris is the capital of France.")
	require.Contains(t, buf.String(), "Answer")
	require.Contains(t, buf.String(), "Paris is the capital of France.")
}

func TestCodePlainOutputNumbersLines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false, "")
	p.Code("import os\nprint(os.getcwd())")
	out := buf.String()
	require.Contains(t, out, "Generated Code")
	require.Contains(t, out, "1  import os")
	require.Contains(t, out, "2  print(os.getcwd())")
}

func TestOutputShowsStderrBlock(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false, "")
	p.Output("done\n", "Traceback: boom\n")
	out := buf.String()
	require.Contains(t, out, "--- Output ---")
	require.Contains(t, out, "done")
	require.Contains(t, out, "Errors:")
	require.Contains(t, out, "Traceback: boom")
}

func TestSaveWritesVerbatim(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false, "")
	path := filepath.Join(t.TempDir(), "out.py")
	require.NoError(t, p.Save("print(1)\n", path, "Code"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "print(1)\n", string(data))
	require.Contains(t, buf.String(), "Code saved to "+path)
}

func TestSaveNoPathIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false, "")
	require.NoError(t, p.Save("x", "", "Answer"))
	require.Empty(t, buf.String())
}

func TestSuggestSavePathForVisualizationQuery(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC)
	got := SuggestSavePath("plot sales data from q3", now)
	require.Equal(t, "sales_data_q3_20260830_150405.py", got)
}

func TestSuggestSavePathSkipsStopwords(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC)
	got := SuggestSavePath("make a chart of the revenue", now)
	require.Equal(t, "revenue_20260830_150405.py", got)
}

func TestSuggestSavePathNonVisualization(t *testing.T) {
	require.Empty(t, SuggestSavePath("what is the capital of France", time.Now()))
}
