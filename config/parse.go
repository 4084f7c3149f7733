package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/coregx/bytematch"
)

// The declaration format is INI: "[section]" headers, "key = value" pairs
// and ";" or "#" comment lines. Pairs before the first header land in the
// unnamed section "". The lexer switches state at '=' so values may contain
// any byte but a line break.
var iniLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `[;#][^\n]*`},
		{Name: "Section", Pattern: `\[[^\]\r\n]*\]`},
		{Name: "Key", Pattern: `[^ \t\r\n=;#\[][^=\r\n]*`},
		{Name: "Assign", Pattern: `=`, Action: lexer.Push("Value")},
		{Name: "EOL", Pattern: `[\r\n]+`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	},
	"Value": {
		{Name: "Text", Pattern: `[^\r\n]+`},
		{Name: "EOL", Pattern: `[\r\n]+`, Action: lexer.Pop()},
	},
})

type iniFile struct {
	Entries []iniEntry `parser:"@@*"`
}

type iniEntry struct {
	Section *string  `parser:"@Section"`
	Pair    *iniPair `parser:"| @@"`
}

type iniPair struct {
	Key   string `parser:"@Key Assign"`
	Value string `parser:"@Text?"`
}

var iniParser = participle.MustBuild[iniFile](
	participle.Lexer(iniLexer),
	participle.Elide("Comment", "Whitespace", "EOL"),
)

// Parse reads declarations from rd until EOF. A non-empty sectionFilter
// loads only that section. With overwrite false, keys already present in
// the repository keep their current value.
func (r *Repo) Parse(rd io.Reader, sectionFilter string, overwrite bool) error {
	file, err := iniParser.Parse("config", rd)
	if err != nil {
		return err
	}
	section := ""
	for _, e := range file.Entries {
		if e.Section != nil {
			name := *e.Section
			section = strings.TrimSpace(name[1 : len(name)-1])
			continue
		}
		if sectionFilter != "" && section != sectionFilter {
			continue
		}
		key := strings.TrimSpace(e.Pair.Key)
		if key == "" {
			continue
		}
		if !overwrite && r.Has(section, key) {
			continue
		}
		r.SetString(section, key, strings.TrimSpace(e.Pair.Value))
	}
	return nil
}

// LoadFile opens path and parses it as with Parse.
func (r *Repo) LoadFile(path, sectionFilter string, overwrite bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Parse(f, sectionFilter, overwrite)
}

// Write emits the repository as INI declarations, sections and keys in
// sorted order with the unnamed section first. Variable references are
// written in their "$(...)" spelling, unresolved. A non-empty sectionFilter
// writes only that section.
func (r *Repo) Write(w io.Writer, sectionFilter string) error {
	names := make([]string, 0, len(r.sections))
	for name := range r.sections {
		if sectionFilter != "" && name != sectionFilter {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name != "" {
			if _, err := fmt.Fprintf(w, "[%s]\n", name); err != nil {
				return err
			}
		}
		m := r.sections[name]
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := fmt.Fprintf(w, "%s = %s\n", key, m[key].toString()); err != nil {
				return err
			}
		}
	}
	return nil
}

// cmdlinePattern recognizes "--section:key=value" arguments.
var cmdlinePattern = bytematch.MustCompile(`^--([^:=]+):([^:=]+)=(.*)$`)

// ParseCommandLine scans command-line arguments for "--section:key=value"
// declarations and stores each as a string value. Other arguments are
// ignored.
func (r *Repo) ParseCommandLine(args []string) {
	caps := make([]bytematch.Capture, 3)
	for _, arg := range args {
		subject := []byte(arg)
		if !cmdlinePattern.Match(subject, caps) {
			continue
		}
		section := string(caps[0].In(subject))
		key := string(caps[1].In(subject))
		value := string(caps[2].In(subject))
		r.SetString(section, key, value)
	}
}
