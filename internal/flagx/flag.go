// Package flagx lets several loaders share os.Args without tripping over
// each other's flags.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the flags listed in known (plus their values) and
// drops everything else, so a FlagSet can parse a subset of the command line
// with flag.ContinueOnError without failing on foreign flags.
//
// Both "-f value" and "-f=value" forms are recognised. A token starting with
// "-" is never consumed as a value.
func FilterArgs(args []string, known []string) []string {
	allowed := make(map[string]bool, len(known))
	for _, f := range known {
		allowed[f] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if allowed[name] {
				out = append(out, arg)
			}
			continue
		}

		if !allowed[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
