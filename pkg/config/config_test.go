package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"src.shadegraph.dev/pkg/must"
	"src.shadegraph.dev/pkg/testutil"
	. "src.shadegraph.dev/pkg/tt"
)

func memFs(files map[string]string) afero.Fs {
	fs := afero.NewMemMapFs()
	for name, content := range files {
		must.OK(afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func TestLoad(t *testing.T) {
	fs := memFs(map[string]string{"/etc/sg.yaml": testutil.Dedent(`
		log:
		  level: debug
		compile:
		  blocks: [head, body]
		  current: body
		eval:
		  max_depth: "50"
		catalog:
		  format: markdown
		`)})
	cfg, err := Load(fs, "/etc/sg.yaml", true, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Log.Level = "debug"
	want.Compile = Compile{Blocks: []string{"head", "body"}, Current: "body"}
	want.Eval.MaxDepth = 50
	want.Catalog.Format = "markdown"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load (-want +got):\n%s", diff)
	}
}

func TestLoad_Env(t *testing.T) {
	fs := memFs(map[string]string{"/c.yaml": "color: never\n"})
	cfg, err := Load(fs, "/c.yaml", true, []string{
		"SHADEGRAPH_COLOR=always",
		"SHADEGRAPH_EVAL_MAX_DEPTH=7",
		"SHADEGRAPH_COMPILE_BLOCKS=a,fragment",
		"SHADEGRAPH_CONFIG=/ignored.yaml",
		"HOME=/root",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Color != "always" || cfg.Eval.MaxDepth != 7 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"a", "fragment"}, cfg.Compile.Blocks); diff != "" {
		t.Errorf("compile.blocks (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg, err := Load(fs, "/nope.yaml", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file (-want +got):\n%s", diff)
	}
	if _, err := Load(fs, "/nope.yaml", true, nil); err == nil {
		t.Errorf("missing required file accepted")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"syntax", "log: [", "/c.yaml"},
		{"unknown key", "colour: auto\n", "colour"},
		{"bad color", "color: pink\n", "color must be auto, always or never"},
		{"bad format", "catalog: {format: html}\n", "catalog.format"},
		{"bad depth", "eval: {max_depth: -1}\n", "eval.max_depth"},
		{"bad current", "compile: {current: vertex}\n", `compile.current "vertex"`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(memFs(map[string]string{"/c.yaml": test.src}), "/c.yaml", true, nil)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("got error %v, want one containing %q", err, test.want)
			}
		})
	}
}

func TestPath(t *testing.T) {
	env := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}
	Test(t, Fn("Path", Path), Table{
		Args("/x.yaml", env(nil)).Rets("/x.yaml"),
		Args("", env(map[string]string{"SHADEGRAPH_CONFIG": "/y.yaml"})).Rets("/y.yaml"),
		Args("", env(map[string]string{"XDG_CONFIG_HOME": "/xdg"})).Rets("/xdg/shadegraph/config.yaml"),
	})
}
