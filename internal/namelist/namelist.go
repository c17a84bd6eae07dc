// Package namelist renders a normalized parameter tree into Fortran namelist
// blocks, the input format read by the Quantum ESPRESSO executables.
//
// Rendering is deterministic: sections follow the fixed compulsory order and
// keys within a section are visited in ascending lexical order, so identical
// trees always produce byte-identical output.
package namelist

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/params"
)

// Render emits one namelist block per compulsory section, in the given
// order. Each block opens with `&NAME`, carries one formatted line per key in
// ascending key order, and closes with `/`. A compulsory section absent from
// the tree renders as an empty block.
//
// Sections are consumed from a snapshot of the tree; the tree itself is not
// modified. Sections left over once every compulsory section has been
// consumed are unrecognized and fail the whole render. Output written before
// such a failure must be discarded by the caller; use RenderString to avoid
// touching the destination until rendering has succeeded.
func Render(w io.Writer, tree params.Tree, order []string) error {
	worklist := tree.Clone()

	for _, name := range order {
		if _, err := fmt.Fprintf(w, "&%s\n", name); err != nil {
			return err
		}

		section := worklist[name]
		delete(worklist, name)

		keys := make([]string, 0, len(section))
		for k := range section {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			lines, err := entryLines(name, k, section[k])
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, lines); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "/\n"); err != nil {
			return err
		}
	}

	if len(worklist) > 0 {
		return errors.UnrecognizedSections(worklist.SectionNames())
	}

	return nil
}

// RenderString renders the tree into memory. Nothing reaches disk on
// failure, which keeps a partially rendered file from ever existing.
func RenderString(tree params.Tree, order []string) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, tree, order); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// entryLines formats a single key. Scalars produce one `  key = value` line;
// lists produce one line per element with a 1-based Fortran index, `  key(1)
// = value` onward.
func entryLines(section, key string, value any) (string, error) {
	if list, ok := asList(value); ok {
		var sb strings.Builder
		for i, item := range list {
			formatted, err := formatScalar(item)
			if err != nil {
				return "", errors.UnsupportedValue(section, key, item)
			}
			fmt.Fprintf(&sb, "  %s(%d) = %s\n", key, i+1, formatted)
		}

		return sb.String(), nil
	}

	formatted, err := formatScalar(value)
	if err != nil {
		return "", errors.UnsupportedValue(section, key, value)
	}

	return fmt.Sprintf("  %s = %s\n", key, formatted), nil
}

// asList widens the supported slice types to []any. Strings are scalars, not
// lists.
func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []bool:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, true
	default:
		return nil, false
	}
}

// formatScalar converts a Go scalar into its Fortran literal form: booleans
// as `.true.`/`.false.`, integers as-is, floats as fixed-width double
// literals with a `d` exponent, strings single-quoted.
func formatScalar(value any) (string, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return ".true.", nil
		}
		return ".false.", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return fortranFloat(v), nil
	case string:
		return "'" + v + "'", nil
	default:
		return "", fmt.Errorf("unsupported scalar type %T", value)
	}
}

// fortranFloat renders v in the 18.10 scientific format uscf.x expects, with
// the exponent marker switched to `d` for a Fortran double literal.
func fortranFloat(v float64) string {
	return strings.Replace(fmt.Sprintf("%18.10e", v), "e", "d", 1)
}
