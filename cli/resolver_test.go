package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/log"
)

func loadConfig(t *testing.T, doc string) config {
	t.Helper()

	r, err := resolve("config")(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	return r.(config)
}

func TestResolve_Namespaced(t *testing.T) {
	cfg := loadConfig(t, `
config:
  log-level: debug
  log_pretty: false
  depth: 12
  ratio: 0.5
  names: [a, b]
other: ignored
`)

	want := map[string]any{
		"log-level":  "debug",
		"log_pretty": false,
		"depth":      "12",
		"ratio":      "0.5",
	}

	for k, v := range want {
		if cfg[k] != v {
			t.Errorf("%s = %#v, want %#v", k, cfg[k], v)
		}
	}

	if list, ok := cfg["names"].([]any); !ok || len(list) != 2 || list[0] != "a" {
		t.Errorf("names = %#v", cfg["names"])
	}

	if _, ok := cfg["other"]; ok {
		t.Error("key outside the config mapping was loaded")
	}
}

func TestResolve_TopLevelJSON(t *testing.T) {
	cfg := loadConfig(t, `{"log-format": "text", "log-caller": true}`)

	if cfg["log-format"] != "text" || cfg["log-caller"] != true {
		t.Errorf("cfg = %#v", cfg)
	}
}

func TestResolve_Invalid(t *testing.T) {
	if _, err := resolve("config")(strings.NewReader("config: [unclosed")); err == nil {
		t.Error("no error for malformed YAML")
	}
}

func TestResolve_Flags(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	var cli struct {
		Log logConfig `embed:"" prefix:"log-"`
	}

	var out bytes.Buffer

	parser, err := kong.New(&cli,
		kong.Vars{}.CloneWith(cli.Log.vars()),
		kong.Writers(&out, &out),
		kong.Exit(func(int) { t.Fatalf("exit: %s", out.String()) }),
		kong.Resolvers(loadConfig(t, "config:\n  log_level: warn\n  log-pretty: false\n")),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--log-format=text"}); err != nil {
		t.Fatal(err)
	}

	if cli.Log.Level != "warn" || cli.Log.Pretty || cli.Log.Format != "text" {
		t.Errorf("log = %+v", cli.Log)
	}
}
