package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleINI = `; leading comment
global = yes

[render]
width = 1280
height = 720
vsync = true
# budget in bytes
texturemem = 64M

[audio]
channels = 2
driver = $(defaults:driver)

[defaults]
driver = pulse
`

func TestParse(t *testing.T) {
	r := New()
	if err := r.Parse(strings.NewReader(sampleINI), "", true); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !r.Bool("", "global") {
		t.Error("pair before the first section must land in the unnamed section")
	}
	if got := r.Int("render", "width"); got != 1280 {
		t.Errorf("width = %d", got)
	}
	if !r.Bool("render", "vsync") {
		t.Error("vsync must parse as true")
	}
	if got := r.Int("render", "texturemem"); got != 64*1024*1024 {
		t.Errorf("texturemem = %d, want 64M", got)
	}
	if got := r.String("audio", "driver"); got != "pulse" {
		t.Errorf("variable from parsed file = %q, want %q", got, "pulse")
	}
}

func TestParseSectionFilter(t *testing.T) {
	r := New()
	if err := r.Parse(strings.NewReader(sampleINI), "audio", true); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if r.Has("render", "width") {
		t.Error("filtered-out section must not be loaded")
	}
	if got := r.Int("audio", "channels"); got != 2 {
		t.Errorf("channels = %d", got)
	}
}

func TestParseOverwrite(t *testing.T) {
	r := New()
	r.SetInt("render", "width", 640)

	if err := r.Parse(strings.NewReader(sampleINI), "", false); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := r.Int("render", "width"); got != 640 {
		t.Errorf("width overwritten despite overwrite=false: %d", got)
	}
	if got := r.Int("render", "height"); got != 720 {
		t.Errorf("new key not loaded: %d", got)
	}

	if err := r.Parse(strings.NewReader(sampleINI), "", true); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := r.Int("render", "width"); got != 1280 {
		t.Errorf("width not overwritten despite overwrite=true: %d", got)
	}
}

func TestParseWhitespaceAndComments(t *testing.T) {
	input := "  key  =  padded value  \r\n; comment = not a pair\n# neither = is this\nempty =\n"
	r := New()
	if err := r.Parse(strings.NewReader(input), "", true); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := r.String("", "key"); got != "padded value" {
		t.Errorf("padded value = %q", got)
	}
	if r.Has("", "comment") || r.Has("", "neither") {
		t.Error("comment lines must not produce pairs")
	}
	if !r.Has("", "empty") || r.String("", "empty") != "" {
		t.Error("empty value must parse as the empty string")
	}
}

func TestWrite(t *testing.T) {
	r := New()
	r.SetInt("render", "width", 1280)
	r.SetBool("render", "vsync", true)
	r.SetString("audio", "driver", "$(defaults:driver)")
	r.SetString("", "global", "yes")

	var buf bytes.Buffer
	if err := r.Write(&buf, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "global = yes\n" +
		"[audio]\n" +
		"driver = $(defaults:driver)\n" +
		"[render]\n" +
		"vsync = true\n" +
		"width = 1280\n"
	if buf.String() != want {
		t.Errorf("Write output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteSectionFilter(t *testing.T) {
	r := New()
	r.SetInt("render", "width", 1280)
	r.SetInt("audio", "channels", 2)

	var buf bytes.Buffer
	if err := r.Write(&buf, "audio"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "[audio]\nchannels = 2\n"
	if buf.String() != want {
		t.Errorf("filtered Write output = %q, want %q", buf.String(), want)
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	r := New()
	if err := r.Parse(strings.NewReader(sampleINI), "", true); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Write(&buf, ""); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	again := New()
	if err := again.Parse(&buf, "", true); err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if got := again.Int("render", "width"); got != 1280 {
		t.Errorf("round-tripped width = %d", got)
	}
	if got := again.String("audio", "driver"); got != "pulse" {
		t.Errorf("round-tripped variable = %q, want %q", got, "pulse")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.ini")
	if err := os.WriteFile(path, []byte(sampleINI), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New()
	if err := r.LoadFile(path, "", true); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if got := r.Int("render", "height"); got != 720 {
		t.Errorf("height = %d", got)
	}

	if err := r.LoadFile(filepath.Join(t.TempDir(), "missing.ini"), "", true); err == nil {
		t.Error("LoadFile on a missing file must fail")
	}
}

func TestParseCommandLine(t *testing.T) {
	r := New()
	r.ParseCommandLine([]string{
		"--render:width=1920",
		"positional",
		"--flag",
		"--audio:driver=alsa",
		"--bad:novalue",
		"--render:limit=8k",
	})
	if got := r.Int("render", "width"); got != 1920 {
		t.Errorf("width = %d", got)
	}
	if got := r.String("audio", "driver"); got != "alsa" {
		t.Errorf("driver = %q", got)
	}
	if got := r.Int("render", "limit"); got != 8192 {
		t.Errorf("limit = %d", got)
	}
	if r.Has("bad", "novalue") {
		t.Error("argument without '=' must be ignored")
	}
}
