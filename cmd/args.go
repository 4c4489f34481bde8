package cmd

import "strings"

// legacy single dash spellings of long flags.
var legacyFlags = map[string]string{
	"-st":  "--st",
	"-sil": "--sil",
	"-t2":  "--t2",
	"-out": "--out",
}

// NormalizeArgs rewrites the single dash long flags accepted by the
// historical launcher into their cobra spelling. Values and the
// "-out=dir" form are preserved.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "--" {
			copy(out[i:], args[i:])
			break
		}
		name, value, hasValue := strings.Cut(a, "=")
		if long, ok := legacyFlags[name]; ok {
			if hasValue {
				a = long + "=" + value
			} else {
				a = long
			}
		}
		out[i] = a
	}
	return out
}
