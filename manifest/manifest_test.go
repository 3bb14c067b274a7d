package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
[program]
image = "build/app.somi"
entry = "Main"
selector = "start"
args = ["x", "y"]

[runtime]
max_frame_depth = 1024
gc_threshold = 50000
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample), "/proj")
	if err != nil {
		t.Fatal(err)
	}
	if m.Program.Image != filepath.Join("/proj", "build/app.somi") {
		t.Errorf("image = %q", m.Program.Image)
	}
	if m.Program.Entry != "Main" {
		t.Errorf("entry = %q", m.Program.Entry)
	}
	if m.EntrySelector() != "start" {
		t.Errorf("selector = %q", m.EntrySelector())
	}
	if len(m.Program.Args) != 2 {
		t.Errorf("args = %v", m.Program.Args)
	}
	if m.Runtime.MaxFrameDepth != 1024 || m.Runtime.GCThreshold != 50000 {
		t.Error("runtime limits not decoded")
	}
}

func TestSelectorDefaultsToRun(t *testing.T) {
	m, err := Parse([]byte("[program]\nimage = \"a.somi\"\nentry = \"Main\"\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if m.EntrySelector() != "run" {
		t.Errorf("selector = %q, want run", m.EntrySelector())
	}
}

func TestValidation(t *testing.T) {
	cases := []string{
		"[program]\nentry = \"Main\"\n",                                                // missing image
		"[program]\nimage = \"a.somi\"\n",                                              // missing entry
		"[program]\nimage = \"a\"\nentry = \"M\"\n[runtime]\nmax_frame_depth = -1\n",   // negative depth
		"[program]\nimage = \"a\"\nentry = \"M\"\n[runtime]\ngc_threshold = -5\n",      // negative threshold
	}
	for i, src := range cases {
		if _, err := Parse([]byte(src), ""); err == nil {
			t.Errorf("case %d: expected a validation error", i)
		}
	}
}

func TestParseRejectsBadTOML(t *testing.T) {
	if _, err := Parse([]byte("not toml ["), ""); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Program.Image != filepath.Join(dir, "build/app.somi") {
		t.Errorf("image = %q", m.Program.Image)
	}
}

func TestAbsoluteImagePathKept(t *testing.T) {
	src := "[program]\nimage = \"/abs/app.somi\"\nentry = \"Main\"\n"
	m, err := Parse([]byte(src), "/elsewhere")
	if err != nil {
		t.Fatal(err)
	}
	if m.Program.Image != "/abs/app.somi" {
		t.Errorf("absolute path must be preserved, got %q", m.Program.Image)
	}
}
