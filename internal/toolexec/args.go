package toolexec

import (
	"strconv"

	"github.com/me/ligflow/pkg/model"
)

// Path marks an argument value as a filesystem path. Plain strings are also
// accepted as arguments; Path exists so call sites can state intent.
type Path string

// NormalizeArgs converts an argument list to strings. Only text, paths and
// integers are permitted argument kinds; anything else is a programming error
// reported as a ConfigurationError before any process is spawned.
func NormalizeArgs(args []any) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			out = append(out, v)
		case Path:
			out = append(out, string(v))
		case int:
			out = append(out, strconv.Itoa(v))
		case int64:
			out = append(out, strconv.FormatInt(v, 10))
		default:
			return nil, model.NewConfigurationError(
				"invalid type %T with value `%v` passed as an executable argument", arg, arg)
		}
	}
	return out, nil
}
