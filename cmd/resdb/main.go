package main

import (
	"os"
	"strings"

	"resdb-tools/internal/cli"
)

// isRecordLocator reports whether s looks like a pasted record locator.
func isRecordLocator(s string) bool {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "resrec://")
	return ok && strings.Trim(rest, "/") != ""
}

func rewriteDirectRecordLookupArgs(argv []string) []string {
	// `resdb <resrec:///owner/id>` works like `resdb records get <locator>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
	// before parsing. Persistent flags may come first, so look for the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":     true,
		"--user":    true,
		"--owner":   true,
		"--backend": true,
		"--format":  true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "records", "get")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isRecordLocator(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}
		if isRecordLocator(a) {
			return rewrite(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectRecordLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
