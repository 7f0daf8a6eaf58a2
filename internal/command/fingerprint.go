package command

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/giantswarm/procctl/internal/fingerprint"
)

// commandReturns stands in for the result list of an external command.
const commandReturns = "exit-status"

// Fingerprint identifies argv as a unit of work: the resolved binary is the
// module, its base name the name, the quoted arguments the parameters.
// Running the same binary with different arguments yields a different lock.
func Fingerprint(argv []string) (fingerprint.Fingerprint, error) {
	if len(argv) == 0 || argv[0] == "" {
		return fingerprint.Fingerprint{}, ErrEmptyCommand
	}

	bin, err := filepath.Abs(lookPath(argv[0], Environ()))
	if err != nil {
		return fingerprint.Fingerprint{}, fmt.Errorf("%w: resolve %s: %w", fingerprint.ErrUndeterminable, argv[0], err)
	}

	quoted := make([]string, 0, len(argv)-1)
	for _, arg := range argv[1:] {
		quoted = append(quoted, strconv.Quote(arg))
	}

	fp := fingerprint.Fingerprint{
		Module:  bin,
		Name:    filepath.Base(argv[0]),
		Params:  "(" + strings.Join(quoted, ", ") + ")",
		Returns: commandReturns,
	}
	if err := fp.Validate(); err != nil {
		return fingerprint.Fingerprint{}, err
	}
	return fp, nil
}
