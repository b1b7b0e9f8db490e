package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/goalnet/pkg/layout"
	"github.com/matzehuels/goalnet/pkg/pipeline"
	"github.com/matzehuels/goalnet/pkg/store"
)

const testNetwork = `{
  "nodes": [
    {"id": 1, "name": "Get fit", "goal_type": "directive", "position_x": 0, "position_y": 0},
    {"id": 2, "name": "Run a marathon", "goal_type": "project"},
    {"id": 3, "name": "Buy shoes", "goal_type": "achievement"}
  ],
  "edges": [
    {"from": 1, "to": 2, "relationship_type": "child"},
    {"from": 2, "to": 3, "relationship_type": "queue"}
  ]
}`

// testEnv isolates config, cache and store directories under t.TempDir.
type testEnv struct {
	dir    string
	config string
	store  string
}

func newTestEnv(t *testing.T, extra string) testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	env := testEnv{
		dir:    dir,
		config: filepath.Join(dir, "goalnet.toml"),
		store:  filepath.Join(dir, "networks"),
	}
	cfg := fmt.Sprintf("[store]\nbackend = \"file\"\npath = %q\n\n[cache]\ndir = %q\n%s",
		env.store, filepath.Join(dir, "cache"), extra)
	writeFile(t, env.config, cfg)
	return env
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()

	want := []string{"layout", "place", "render", "import", "serve", "inspect", "cache", "completion"}
	for _, name := range want {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestRootCommandMissingConfig(t *testing.T) {
	env := newTestEnv(t, "")
	env.config = filepath.Join(env.dir, "missing.toml")

	if _, err := env.run(t, "place", "--count", "1"); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestPlaceCommand(t *testing.T) {
	env := newTestEnv(t, "[layout]\nbase_spacing = 250\n")

	layoutFile := filepath.Join(env.dir, "net.layout.json")
	res := &layout.Result{Nodes: []layout.PositionedNode{{ID: 1}, {ID: 2, X: 200}}}
	if err := layout.WriteResultFile(res, layoutFile); err != nil {
		t.Fatal(err)
	}

	format := func(p layout.Point) string { return fmt.Sprintf("%.2f %.2f\n", p.X, p.Y) }

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"origin", []string{"--count", "0"}, "0.00 0.00\n", false},
		{"config spacing", []string{"--count", "1"}, format(layout.SpiralPosition(1, 250)), false},
		{"flag spacing", []string{"--count", "3", "--base-spacing", "100"}, format(layout.SpiralPosition(3, 100)), false},
		{"layout file", []string{layoutFile}, format(layout.SpiralPosition(2, 250)), false},
		{"negative count", []string{"--count", "-1"}, "", true},
		{"no input", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, append([]string{"place"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestLayoutCommandWritesFile(t *testing.T) {
	env := newTestEnv(t, "")
	input := filepath.Join(env.dir, "net.json")
	writeFile(t, input, testNetwork)

	if _, err := env.run(t, "layout", input, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	res, err := layout.ReadResultFile(filepath.Join(env.dir, "net.layout.json"))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if len(res.Nodes) != 3 || len(res.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges, want 3, 2", len(res.Nodes), len(res.Edges))
	}
	n, ok := res.Node(1)
	if !ok || !n.Pinned || n.X != 0 || n.Y != 0 {
		t.Errorf("pinned goal moved: %+v", n)
	}
	if res.Saves.Attempted != 0 {
		t.Errorf("file layout without --save attempted %d saves", res.Saves.Attempted)
	}
}

func TestLayoutCommandRequiresInput(t *testing.T) {
	env := newTestEnv(t, "")
	if _, err := env.run(t, "layout"); err == nil {
		t.Fatal("expected error without file or --user")
	}
}

func TestImportThenLayoutUser(t *testing.T) {
	env := newTestEnv(t, "")
	input := filepath.Join(env.dir, "net.json")
	writeFile(t, input, testNetwork)

	if _, err := env.run(t, "import", input, "--user", "7"); err != nil {
		t.Fatalf("import: %v", err)
	}
	output := filepath.Join(env.dir, "user.layout.json")
	if _, err := env.run(t, "layout", "--user", "7", "-o", output); err != nil {
		t.Fatalf("layout --user: %v", err)
	}

	st, err := store.NewFile(env.store)
	if err != nil {
		t.Fatal(err)
	}
	g, err := st.Network(context.Background(), 7)
	if err != nil {
		t.Fatalf("load network: %v", err)
	}
	for _, n := range g.Nodes {
		if !n.Pinned() {
			t.Errorf("goal %d has no stored position after layout", n.ID)
		}
	}

	// A second run keeps every position.
	first, err := layout.ReadResultFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "layout", "--user", "7", "-o", output, "--refresh"); err != nil {
		t.Fatalf("second layout: %v", err)
	}
	second, err := layout.ReadResultFile(output)
	if err != nil {
		t.Fatal(err)
	}
	for id, p := range first.Positions() {
		if q := second.Positions()[id]; q != p {
			t.Errorf("goal %d moved from %v to %v", id, p, q)
		}
	}
}

func TestRenderCommandDOT(t *testing.T) {
	env := newTestEnv(t, "")
	input := filepath.Join(env.dir, "net.json")
	writeFile(t, input, testNetwork)

	if _, err := env.run(t, "render", input, "-f", "dot,json"); err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(filepath.Join(env.dir, "net.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph goals") {
		t.Errorf("dot output starts with %q", firstLine(string(dot)))
	}
	if _, err := layout.ReadResultFile(filepath.Join(env.dir, "net.layout.json")); err != nil {
		t.Errorf("json artifact: %v", err)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	env := newTestEnv(t, "")
	input := filepath.Join(env.dir, "net.json")
	writeFile(t, input, testNetwork)

	if _, err := env.run(t, "render", input, "-f", "png"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestInspectPlain(t *testing.T) {
	env := newTestEnv(t, "")
	file := filepath.Join(env.dir, "net.layout.json")
	res := &layout.Result{Nodes: []layout.PositionedNode{
		{ID: 1, Label: "Get fit", Kind: "directive", Role: layout.RoleRoot, Importance: 1},
	}}
	if err := layout.WriteResultFile(res, file); err != nil {
		t.Fatal(err)
	}

	out, err := env.run(t, "inspect", "--plain", file)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Get fit", "directive", "root"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCachePath(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := env.run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(env.dir, "cache"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestLayoutFlagsApply(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want pipeline.Options
	}{
		{
			name: "nothing set keeps defaults",
			want: pipeline.Options{BaseSpacing: 150, Algorithm: "greedy"},
		},
		{
			name: "explicit flags override",
			args: []string{"--base-spacing", "80", "-a", "force", "--iterations", "10", "--damping", "0.5", "--refresh"},
			want: pipeline.Options{BaseSpacing: 80, Algorithm: "force", Iterations: 10, Damping: 0.5, Refresh: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f layoutFlags
			cmd := &cobra.Command{Use: "x"}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			opts := pipeline.Options{BaseSpacing: 150, Algorithm: "greedy"}
			f.apply(cmd, &opts)
			if opts.BaseSpacing != tt.want.BaseSpacing || opts.Algorithm != tt.want.Algorithm ||
				opts.Iterations != tt.want.Iterations || opts.Damping != tt.want.Damping ||
				opts.Refresh != tt.want.Refresh {
				t.Errorf("apply() = %+v, want %+v", opts, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"json, dot ,svg", []string{"json", "dot", "svg"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct{ in, suffix, want string }{
		{"net.json", "layout.json", "net.layout.json"},
		{"dir/net", "dot", "dir/net.dot"},
		{"a.b.json", "svg", "a.b.svg"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.in, tt.suffix); got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.in, tt.suffix, got, tt.want)
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func TestCompletionCommand(t *testing.T) {
	env := newTestEnv(t, "")

	for _, shell := range []string{"bash", "zsh", "fish"} {
		out, err := env.run(t, "completion", shell)
		if err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(out, "goalnet") {
			t.Errorf("%s script does not mention goalnet", shell)
		}
	}
	if _, err := env.run(t, "completion", "powershell"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
