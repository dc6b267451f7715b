package cli

import (
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("root.Use = %q, want %q", root.Use, appName)
	}

	want := []string{"generate", "blocks", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"json", []string{"json"}},
		{"json,dot,svg", []string{"json", "dot", "svg"}},
		{" json , dot ", []string{"json", "dot"}},
		{",", nil},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLibraryInfo(t *testing.T) {
	infos, err := libraryInfo()
	if err != nil {
		t.Fatalf("libraryInfo() error: %v", err)
	}
	if len(infos) == 0 {
		t.Fatal("no blocks registered")
	}

	byName := make(map[string]BlockInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}

	inv, ok := byName["inverter"]
	if !ok {
		t.Fatal("inverter not listed")
	}
	if !reflect.DeepEqual(inv.Views, []string{"schematic", "layout"}) {
		t.Errorf("inverter views = %v", inv.Views)
	}
	if inv.Params == "" || inv.Params == "null" {
		t.Errorf("inverter defaults missing, got %q", inv.Params)
	}

	res, ok := byName["resistor"]
	if !ok {
		t.Fatal("resistor not listed")
	}
	if !reflect.DeepEqual(res.Views, []string{"schematic"}) {
		t.Errorf("resistor views = %v, want schematic only", res.Views)
	}
}
