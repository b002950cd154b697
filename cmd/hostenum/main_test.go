package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vitalis-app/hostenum/internal/collector"
	"github.com/vitalis-app/hostenum/internal/errs"
)

func execute(t *testing.T, reg *collector.Registry, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(reg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func testRegistry() *collector.Registry {
	reg := collector.NewRegistry(nil)
	reg.Register(collector.Registration{
		Name:    "example",
		Factory: func() collector.Collector { return &collector.ExampleCollector{} },
		CLI:     collector.Descriptor{Version: "1.0", About: "example"},
	})
	reg.Register(collector.Registration{
		Name:    "group:broken",
		Factory: func() collector.Collector { return collector.NewGroup(reg, "example", "ghost") },
		CLI:     collector.Descriptor{Version: "1.0", About: "broken group"},
	})
	return reg
}

func TestSubcommandPerRegistration(t *testing.T) {
	root := newRootCmd(collector.Default())
	for _, r := range collector.All() {
		cmd, _, err := root.Find([]string{r.Name})
		if err != nil {
			t.Errorf("%s: %v", r.Name, err)
			continue
		}
		if cmd.Name() != r.Name {
			t.Errorf("Find(%s) = %s", r.Name, cmd.Name())
		}
		if cmd.Short != r.CLI.About {
			t.Errorf("%s: Short = %q", r.Name, cmd.Short)
		}
	}
}

func TestRunExampleJSON(t *testing.T) {
	out, err := execute(t, testRegistry(), "--format", "json", "example")
	if err != nil {
		t.Fatal(err)
	}

	var rep struct {
		RunID   string `json:"run_id"`
		Command string `json:"command"`
		Tables  []struct {
			Source string `json:"source"`
		} `json:"tables"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if rep.Command != "example" || rep.RunID == "" {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.Tables) != 1 || rep.Tables[0].Source != "Example" {
		t.Errorf("tables = %+v", rep.Tables)
	}
}

func TestRunSimpleOutput(t *testing.T) {
	out, err := execute(t, testRegistry(), "example")
	if err != nil {
		t.Fatal(err)
	}
	if out != "==[Example]==\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunLocalOnlyCollectorRemotely(t *testing.T) {
	_, err := execute(t, testRegistry(), "-c", "dc01", "example")
	if !errors.Is(err, errs.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestRunBrokenGroup(t *testing.T) {
	_, err := execute(t, testRegistry(), "group:broken")
	if !errors.Is(err, errs.ErrMisconfigured) {
		t.Errorf("error = %v, want ErrMisconfigured", err)
	}

	_, err = execute(t, testRegistry(), "--strict", "example")
	if !errors.Is(err, errs.ErrMisconfigured) {
		t.Errorf("strict error = %v, want ErrMisconfigured", err)
	}
}

func TestRunExportsAndArchives(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	saveDir := filepath.Join(dir, "reports")

	if _, err := execute(t, testRegistry(), "--sqlite", db, "--save-dir", saveDir, "example"); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(db); err != nil {
		t.Errorf("sqlite database not written: %v", err)
	}
	entries, err := os.ReadDir(saveDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Errorf("archive holds %d entries", len(entries))
	}
}

func TestInvalidFormat(t *testing.T) {
	if _, err := execute(t, testRegistry(), "--format", "xml", "example"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestUploadNeedsServer(t *testing.T) {
	if _, err := execute(t, testRegistry(), "--upload", "example"); err == nil {
		t.Error("expected error for --upload without a server")
	}
}

func TestList(t *testing.T) {
	out, err := execute(t, testRegistry(), "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "group:broken") || !strings.Contains(out, "example") {
		t.Errorf("list output:\n%s", out)
	}
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostenum.yaml")
	root := newRootCmd(testRegistry())
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader("\n\n"))
	root.SetArgs([]string{"--config", path, "-c", "dc01", "init", "--mode", "user"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("dc01")) {
		t.Errorf("config does not name the target:\n%s", data)
	}
}
