package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prioq/internal/report"
	"prioq/internal/store"
	"prioq/internal/workload"
)

const testWorkload = `
tasks:
  - id: T1
    priority: 10
    execution_time: 5
  - id: T2
    priority: 30
    execution_time: 3
    deadline: 2
  - id: T3
    priority: 20
    execution_time: 4
`

// env is a scratch directory with a config pointing the history
// database into it.
type env struct {
	dir string
	cfg string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "prioq.yaml")
	body := "log_level: error\ndb_path: " + filepath.Join(dir, "history.db") + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	return env{dir: dir, cfg: cfg}
}

func (e env) path(name string) string { return filepath.Join(e.dir, name) }

func (e env) write(t *testing.T, name, body string) string {
	t.Helper()
	p := e.path(name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func (e env) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := newEnv(t).run("version")
	require.NoError(t, err)
	assert.Equal(t, "prioq test\n", out)
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	dest := e.path("conf/new.yaml")

	cmd := NewRootCmd("test")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", dest, "init"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "generator:")

	cmd = NewRootCmd("test")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", dest, "init"})
	assert.ErrorContains(t, cmd.Execute(), "already exists")

	cmd = NewRootCmd("test")
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", dest, "init", "--force"})
	assert.NoError(t, cmd.Execute())
}

func TestRun_JSON(t *testing.T) {
	e := newEnv(t)
	w := e.write(t, "w.yaml", testWorkload)

	out, err := e.run("run", w, "-o", "json")
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Results, 3)
	assert.Equal(t, "T2", rep.Results[0].TaskID)
	assert.Equal(t, "T3", rep.Results[1].TaskID)
	assert.Equal(t, "T1", rep.Results[2].TaskID)
	assert.Equal(t, 1, rep.Statistics.DeadlineMissed)
	assert.Empty(t, rep.RunID)
}

func TestRun_Table(t *testing.T) {
	e := newEnv(t)
	out, err := e.run("run", e.write(t, "w.yaml", testWorkload))
	require.NoError(t, err)
	assert.Contains(t, out, "T2")
	assert.Less(t, strings.Index(out, "T2"), strings.Index(out, "T1"))
}

func TestRun_Outputs(t *testing.T) {
	e := newEnv(t)
	w := e.write(t, "w.yaml", testWorkload)
	csvPath := e.path("out.csv")
	promPath := e.path("prioq.prom")

	_, err := e.run("run", w, "--csv", csvPath, "--metrics-textfile", promPath)
	require.NoError(t, err)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	assert.Len(t, lines, 4)

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "prioq_tasks_completed_total 3")
	assert.Contains(t, string(prom), "prioq_deadline_missed_total 1")
}

func TestRun_Errors(t *testing.T) {
	e := newEnv(t)
	w := e.write(t, "w.yaml", testWorkload)

	tests := map[string][]string{
		"missing workload":  {"run", e.path("missing.yaml")},
		"unsupported file":  {"run", e.write(t, "w.txt", "x")},
		"no args":           {"run"},
		"bad output format": {"run", w, "-o", "xml"},
		"bad log level":     {"--log-level", "loud", "run", w},
		"duplicate ids":     {"run", e.write(t, "dup.yaml", "tasks:\n  - id: a\n  - id: a\n")},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := e.run(args...)
			assert.Error(t, err)
		})
	}
}

func TestRun_SaveAndHistory(t *testing.T) {
	e := newEnv(t)
	w := e.write(t, "w.yaml", testWorkload)

	out, err := e.run("run", w, "--save", "-o", "json")
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotEmpty(t, rep.RunID)

	out, err = e.run("history")
	require.NoError(t, err)
	assert.Contains(t, out, rep.RunID)
	assert.Contains(t, out, w)

	out, err = e.run("history", rep.RunID, "-o", "json")
	require.NoError(t, err)
	var got report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, rep, got)

	_, err = e.run("history", "nope")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestHistory_Empty(t *testing.T) {
	out, err := newEnv(t).run("history")
	require.NoError(t, err)
	assert.Equal(t, "No saved runs.\n", out)
}

func TestGen(t *testing.T) {
	e := newEnv(t)

	out, err := e.run("gen", "-n", "5", "--seed", "7")
	require.NoError(t, err)
	file, err := workload.Decode(strings.NewReader(out), workload.FormatYAML)
	require.NoError(t, err)
	assert.Len(t, file.Tasks, 5)

	again, err := e.run("gen", "-n", "5", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	tomlPath := e.path("w.toml")
	_, err = e.run("gen", "-n", "4", "--out", tomlPath)
	require.NoError(t, err)
	tasks, err := workload.Load(tomlPath)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	_, err = e.run("gen", "-n", "0")
	assert.Error(t, err)
}

func TestRun_OverflowRejected(t *testing.T) {
	e := newEnv(t)
	w := e.write(t, "huge.yaml", "tasks:\n  - id: a\n    priority: 2\n    execution_time: 1.0e+308\n  - id: b\n    priority: 1\n    execution_time: 1.0e+308\n")

	out, err := e.run("run", w, "--save", "-o", "json")
	assert.ErrorIs(t, err, report.ErrNonFinite)
	assert.Empty(t, out)

	out, err = e.run("history")
	require.NoError(t, err)
	assert.Equal(t, "No saved runs.\n", out)
}
