package launcher

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// BuildArgs returns the shell arguments (without the executable) that run
// script against connectionString with opts applied:
//
//	[--flag value]... --eval "<vars>" [connectionString] script
func BuildArgs(script, connectionString string, opts ShellOptions) ([]string, error) {
	args := make([]string, 0, 2*len(opts.Flags)+4)

	flags := make([]string, 0, len(opts.Flags))
	for name := range opts.Flags {
		flags = append(flags, name)
	}
	sort.Strings(flags)
	for _, name := range flags {
		args = append(args, "--"+name)
		if value := opts.Flags[name]; value != "" {
			args = append(args, value)
		}
	}

	eval, err := FormatEval(opts)
	if err != nil {
		return nil, err
	}
	if eval != "" {
		args = append(args, "--eval", eval)
	}

	if connectionString != "" {
		args = append(args, connectionString)
	}
	args = append(args, script)
	return args, nil
}

// FormatEval renders the global variables and the extra eval snippet into the
// string passed to --eval. Objects are unrolled into "x = new Object()"
// followed by one assignment per property, so the command line carries no
// braces or colons and can be pasted into a shell as is.
func FormatEval(opts ShellOptions) (string, error) {
	var sb []string

	names := make([]string, 0, len(opts.GlobalVars))
	for name := range opts.GlobalVars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := formatShellVar(&sb, name, opts.GlobalVars[name]); err != nil {
			return "", err
		}
	}

	if opts.Eval != "" {
		sb = append(sb, opts.Eval)
	}
	return strings.Join(sb, "; "), nil
}

func formatShellVar(sb *[]string, path string, value interface{}) error {
	obj, ok := value.(map[string]interface{})
	if !ok {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode shell variable %s: %w", path, err)
		}
		*sb = append(*sb, fmt.Sprintf("%s = %s", path, encoded))
		return nil
	}

	*sb = append(*sb, path+" = new Object()")

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := formatShellVar(sb, propertyPath(path, k), obj[k]); err != nil {
			return err
		}
	}
	return nil
}

func propertyPath(path, key string) string {
	if identifierPattern.MatchString(key) {
		return path + "." + key
	}
	quoted, _ := json.Marshal(key)
	return fmt.Sprintf("%s[%s]", path, quoted)
}
