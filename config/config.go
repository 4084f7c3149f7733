// Package config implements a configuration repository: values stored by
// section and key with transparent type coercion between boolean, integer,
// real and string forms. Setting the integer 123 yields a true boolean, the
// real 123.0 and the string "123" when queried through the other getters.
//
// A string value of the form "$(section:key)" or "$(key)" is a variable:
// it is resolved lazily at query time, recursively (a variable may point at
// another variable) and relative to the queried section when no section is
// named.
//
// The section "environment" is reserved and read-only. It exposes process
// information under fixed keys (executable_name, executable_directory,
// executable_path, initial_working_directory, current_working_directory,
// home_directory, temporary_directory) and environment variables as
// "variable[NAME]".
//
// A Repo is not safe for concurrent use; callers synchronize.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coregx/bytematch"
)

// EnvironmentSection is the reserved read-only section name.
const EnvironmentSection = "environment"

// maxVariableDepth bounds recursive variable resolution so reference cycles
// terminate instead of looping.
const maxVariableDepth = 32

// variablePattern recognizes a whole-value variable reference "$(...)".
var variablePattern = bytematch.MustCompile(`^\$\(([^\)]+)\)$`)

type kind uint8

const (
	kindBool kind = iota
	kindInt
	kindReal
	kindString
	kindVariable
)

type value struct {
	kind kind
	b    bool
	i    int64
	r    float64
	s    string

	// variable target, filled when kind is kindVariable. An empty section
	// means "resolve in the section being queried".
	varSection string
	varKey     string
}

// Repo is a configuration repository.
type Repo struct {
	sections   map[string]map[string]value
	initialDir string
}

// New returns an empty repository. The initial working directory reported
// through the environment section is captured here.
func New() *Repo {
	dir, _ := os.Getwd()
	return &Repo{
		sections:   make(map[string]map[string]value),
		initialDir: dir,
	}
}

// SetBool stores a boolean value for section:key.
func (r *Repo) SetBool(section, key string, v bool) {
	r.set(section, key, value{kind: kindBool, b: v})
}

// SetInt stores an integer value for section:key.
func (r *Repo) SetInt(section, key string, v int64) {
	r.set(section, key, value{kind: kindInt, i: v})
}

// SetReal stores a real value for section:key.
func (r *Repo) SetReal(section, key string, v float64) {
	r.set(section, key, value{kind: kindReal, r: v})
}

// SetString stores a string value for section:key. A value of the form
// "$(section:key)" or "$(key)" is stored as a variable reference and
// resolved on every get.
func (r *Repo) SetString(section, key, v string) {
	caps := make([]bytematch.Capture, 1)
	if variablePattern.MatchString(v, caps) && !caps[0].Absent() {
		inner := v[caps[0].Start : caps[0].Start+caps[0].Length]
		val := value{kind: kindVariable, s: v}
		if i := strings.IndexByte(inner, ':'); i >= 0 {
			val.varSection = inner[:i]
			val.varKey = inner[i+1:]
		} else {
			val.varKey = inner
		}
		r.set(section, key, val)
		return
	}
	r.set(section, key, value{kind: kindString, s: v})
}

func (r *Repo) set(section, key string, v value) {
	m := r.sections[section]
	if m == nil {
		m = make(map[string]value)
		r.sections[section] = m
	}
	m[key] = v
}

// Has reports whether section:key holds a stored value. The environment
// section always reports true.
func (r *Repo) Has(section, key string) bool {
	if section == EnvironmentSection {
		return true
	}
	_, ok := r.sections[section][key]
	return ok
}

// Bool returns the boolean form of section:key, false when unset. Stored
// strings coerce with "", "false" and "0" mapping to false and everything
// else to true; numbers are false exactly at zero.
func (r *Repo) Bool(section, key string) bool {
	v, ok := r.resolve(section, key, 0)
	if !ok {
		return false
	}
	return v.toBool()
}

// Int returns the integer form of section:key, 0 when unset. Stored strings
// parse with an optional k/K (x1024) or m/M (x1024*1024) suffix;
// unparseable strings coerce to 0.
func (r *Repo) Int(section, key string) int64 {
	v, ok := r.resolve(section, key, 0)
	if !ok {
		return 0
	}
	return v.toInt()
}

// Real returns the real form of section:key, 0 when unset. The k/K and m/M
// suffixes apply as for Int.
func (r *Repo) Real(section, key string) float64 {
	v, ok := r.resolve(section, key, 0)
	if !ok {
		return 0
	}
	return v.toReal()
}

// String returns the string form of section:key, "" when unset. Non-string
// values derive their string form on the fly.
func (r *Repo) String(section, key string) string {
	v, ok := r.resolve(section, key, 0)
	if !ok {
		return ""
	}
	return v.toString()
}

func (r *Repo) resolve(section, key string, depth int) (value, bool) {
	if section == EnvironmentSection {
		return value{kind: kindString, s: r.environment(key)}, true
	}
	v, ok := r.sections[section][key]
	if !ok {
		return value{}, false
	}
	if v.kind == kindVariable {
		if depth >= maxVariableDepth {
			return value{}, false
		}
		target := v.varSection
		if target == "" {
			target = section
		}
		return r.resolve(target, v.varKey, depth+1)
	}
	return v, true
}

func (r *Repo) environment(key string) string {
	switch key {
	case "executable_name":
		return filepath.Base(os.Args[0])
	case "executable_directory":
		exe, err := os.Executable()
		if err != nil {
			return ""
		}
		return filepath.Dir(exe)
	case "executable_path":
		exe, err := os.Executable()
		if err != nil {
			return ""
		}
		return exe
	case "initial_working_directory":
		return r.initialDir
	case "current_working_directory":
		dir, _ := os.Getwd()
		return dir
	case "home_directory":
		dir, _ := os.UserHomeDir()
		return dir
	case "temporary_directory":
		return os.TempDir()
	}
	if name, ok := strings.CutPrefix(key, "variable["); ok {
		if name, ok := strings.CutSuffix(name, "]"); ok {
			return os.Getenv(name)
		}
	}
	return ""
}

func (v value) toBool() bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindInt:
		return v.i != 0
	case kindReal:
		return v.r != 0
	default:
		return v.s != "" && v.s != "false" && v.s != "0"
	}
}

func (v value) toInt() int64 {
	switch v.kind {
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	case kindInt:
		return v.i
	case kindReal:
		return int64(v.r)
	default:
		n, _ := parseInt(v.s)
		return n
	}
}

func (v value) toReal() float64 {
	switch v.kind {
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	case kindInt:
		return float64(v.i)
	case kindReal:
		return v.r
	default:
		return parseReal(v.s)
	}
}

func (v value) toString() string {
	switch v.kind {
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	default:
		// Variables keep their raw "$(...)" spelling; resolve() has
		// already chased references before this point for getters.
		return v.s
	}
}

// splitMultiplier strips a trailing k/K or m/M multiplier suffix.
func splitMultiplier(s string) (string, int64) {
	if len(s) < 2 {
		return s, 1
	}
	switch s[len(s)-1] {
	case 'k', 'K':
		return s[:len(s)-1], 1024
	case 'm', 'M':
		return s[:len(s)-1], 1024 * 1024
	}
	return s, 1
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s, mult := splitMultiplier(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n * mult, true
}

func parseReal(s string) float64 {
	s = strings.TrimSpace(s)
	s, mult := splitMultiplier(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f * float64(mult)
}
