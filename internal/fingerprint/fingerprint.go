package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/giantswarm/procctl/internal/sentinel"
)

// ErrUndeterminable is returned when a fingerprint cannot be derived: the
// value is not a non-nil function, its defining file cannot be resolved to an
// existing file, or its name is empty.
const ErrUndeterminable = sentinel.Error("unable to determine caller")

// Fingerprint is the identity of a unit of work.
type Fingerprint struct {
	// Module is the absolute path of the file that defines the work.
	Module string
	// Name is the fully qualified name of the work.
	Name string
	// Params is the rendered parameter list, e.g. "(context.Context, int)".
	Params string
	// Returns is the rendered result list, e.g. "(string, error)".
	Returns string
}

// String renders the fingerprint as "module:name:params:returns".
func (f Fingerprint) String() string {
	return f.Module + ":" + f.Name + ":" + f.Params + ":" + f.Returns
}

// Hash returns the lowercase hex SHA-256 digest of String(). It is used
// verbatim as the lock file name.
func (f Fingerprint) Hash() string {
	sum := sha256.Sum256([]byte(f.String()))
	return hex.EncodeToString(sum[:])
}

// Validate checks that the fingerprint names an existing module file and a
// non-empty name.
func (f Fingerprint) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty function name", ErrUndeterminable)
	}
	if !isRegularFile(f.Module) {
		return fmt.Errorf("%w: module %q for %s does not exist", ErrUndeterminable, f.Module, f.Name)
	}
	return nil
}

// Of derives the fingerprint of fn, which must be a non-nil function value.
//
// The module is the absolute path of the source file fn was compiled from.
// Binaries deployed without their sources, or built with -trimpath, have no
// such file on disk; the absolute path of the running executable stands in
// for it in that case.
func Of(fn any) (Fingerprint, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Fingerprint{}, fmt.Errorf("%w: %T is not a non-nil function", ErrUndeterminable, fn)
	}

	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return Fingerprint{}, fmt.Errorf("%w: no symbol for %T", ErrUndeterminable, fn)
	}

	file, _ := rf.FileLine(rf.Entry())
	module, err := resolveModule(file)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %s: %w", ErrUndeterminable, rf.Name(), err)
	}

	fp := Fingerprint{
		Module:  module,
		Name:    rf.Name(),
		Params:  params(v.Type()),
		Returns: returns(v.Type()),
	}
	if err := fp.Validate(); err != nil {
		return Fingerprint{}, err
	}
	return fp, nil
}

// executable is swapped in tests.
var executable = os.Executable

func resolveModule(file string) (string, error) {
	if filepath.IsAbs(file) && isRegularFile(file) {
		return filepath.Clean(file), nil
	}
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("source %q not on disk and executable unknown: %w", file, err)
	}
	if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
		exe = resolved
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return "", fmt.Errorf("absolute path of executable: %w", err)
	}
	return exe, nil
}

func isRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func params(t reflect.Type) string {
	parts := make([]string, t.NumIn())
	for i := range parts {
		in := t.In(i)
		if t.IsVariadic() && i == len(parts)-1 {
			parts[i] = "..." + in.Elem().String()
			continue
		}
		parts[i] = in.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func returns(t reflect.Type) string {
	parts := make([]string, t.NumOut())
	for i := range parts {
		parts[i] = t.Out(i).String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
