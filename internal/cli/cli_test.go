package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// cliEnv isolates config and data dirs for one test.
func cliEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("RESDB_CONFIG_DIR", t.TempDir())
	t.Setenv("RESDB_USER", "")
	t.Setenv("RESDB_BACKEND", "")
	return t.TempDir()
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: resdb %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	return env
}

func findByName(t *testing.T, data any, name string) map[string]any {
	t.Helper()
	items, ok := data.([]any)
	if !ok {
		t.Fatalf("expected a list, got %T", data)
	}
	for _, it := range items {
		m, _ := it.(map[string]any)
		if m["name"] == name {
			return m
		}
	}
	t.Fatalf("no record named %q in %v", name, items)
	return nil
}

func locator(m map[string]any) string {
	return "resrec:///" + m["ownerId"].(string) + "/" + m["recordId"].(string)
}

func TestCLI_SeedRenameDirectoryMovesChildren(t *testing.T) {
	dir := cliEnv(t)
	base := []string{"--dir", dir, "--user", "U-alice"}
	run := func(args ...string) map[string]any {
		t.Helper()
		return mustRun(t, append(append([]string{}, base...), args...)...)
	}

	seeded := run("seed")
	games := findByName(t, seeded["data"], "Games")

	ls := run("records", "ls")
	findByName(t, ls["data"], "Games")
	findByName(t, ls["data"], "Hat")

	set := run("records", "set", locator(games), "--name", "Games/Old")
	if got := set["data"].(map[string]any)["name"]; got != "Games Old" {
		t.Fatalf("expected sanitized directory name, got %v", got)
	}

	inside := run("records", "ls", "--path", `Inventory\Games Old`)
	findByName(t, inside["data"], "Cards")
	orb := findByName(t, inside["data"], "Party Hub")
	if tags, _ := orb["tags"].([]any); len(tags) != 1 || tags[0] != "world_orb" {
		t.Fatalf("expected world orb tag, got %v", orb["tags"])
	}

	old := run("records", "ls", "--path", `Inventory\Games`)
	if items, _ := old["data"].([]any); len(items) != 0 {
		t.Fatalf("expected the old path to be empty, got %v", items)
	}
}

func TestCLI_SeedRefusesNonEmptyInventory(t *testing.T) {
	dir := cliEnv(t)
	mustRun(t, "--dir", dir, "--user", "U-alice", "seed")
	if _, _, err := runCLI(t, []string{"--dir", dir, "--user", "U-alice", "seed"}); err == nil {
		t.Fatalf("expected a second seed to fail without --force")
	}
	mustRun(t, "--dir", dir, "--user", "U-alice", "seed", "--force")
}

func TestCLI_SetRequiresOwner(t *testing.T) {
	dir := cliEnv(t)
	seeded := mustRun(t, "--dir", dir, "--user", "U-alice", "seed")
	hat := findByName(t, seeded["data"], "Hat")

	_, stderr, err := runCLI(t, []string{"--dir", dir, "--user", "U-bob", "records", "set", locator(hat), "--name", "Mine"})
	if err == nil {
		t.Fatalf("expected another user's edit to fail")
	}
	if !strings.Contains(string(stderr), "Unauthorized") {
		t.Fatalf("expected Unauthorized, got %q", string(stderr))
	}

	// Reads stay open.
	got := mustRun(t, append([]string{"--dir", dir, "--user", "U-bob"}, locatorArgs(hat)...)...)
	if got["data"].(map[string]any)["name"] != "Hat" {
		t.Fatalf("unexpected record %v", got["data"])
	}
}

func locatorArgs(m map[string]any) []string {
	return []string{"records", "get", locator(m)}
}

func TestCLI_SetObjectFields(t *testing.T) {
	dir := cliEnv(t)
	seeded := mustRun(t, "--dir", dir, "--user", "U-alice", "seed")
	hat := findByName(t, seeded["data"], "Hat")

	env := mustRun(t, "--dir", dir, "--user", "U-alice", "records", "set", locator(hat),
		"--thumbnail", "resdb:///new.webp", "--asset", "not a uri")
	data := env["data"].(map[string]any)
	if data["thumbnailUri"] != "resdb:///new.webp" {
		t.Fatalf("expected new thumbnail, got %v", data["thumbnailUri"])
	}
	if data["assetUri"] != hat["assetUri"] {
		t.Fatalf("invalid asset must be ignored, got %v", data["assetUri"])
	}
	if hints, _ := env["_hints"].([]any); len(hints) != 1 {
		t.Fatalf("expected an ignored-asset hint, got %v", env["_hints"])
	}

	games := findByName(t, seeded["data"], "Games")
	if _, _, err := runCLI(t, []string{"--dir", dir, "--user", "U-alice", "records", "set", locator(games), "--asset", "resdb:///x.brson"}); err == nil {
		t.Fatalf("directories have no asset field")
	}
}

func TestCLI_URLActions(t *testing.T) {
	dir := cliEnv(t)
	seeded := mustRun(t, "--dir", dir, "--user", "U-alice", "seed")
	hat := findByName(t, seeded["data"], "Hat")
	games := findByName(t, seeded["data"], "Games")

	all := mustRun(t, "--dir", dir, "records", "url", locator(hat))
	items := all["data"].([]any)
	if len(items) != 3 {
		t.Fatalf("expected three copy actions for an object, got %v", items)
	}
	first := items[0].(map[string]any)
	if first["url"] != locator(hat) {
		t.Fatalf("expected the record URL first, got %v", first)
	}

	one := mustRun(t, "--dir", dir, "records", "url", locator(hat), "--action", "asset")
	if u := one["data"].(map[string]any)["url"].(string); !strings.HasPrefix(u, "https://assets.resonite.com/") {
		t.Fatalf("unexpected raw asset URL %q", u)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "records", "url", locator(games), "--action", "asset"}); err == nil {
		t.Fatalf("directories have no asset to copy")
	}
}

func TestCLI_ShowRawAndRemove(t *testing.T) {
	dir := cliEnv(t)
	seeded := mustRun(t, "--dir", dir, "--user", "U-alice", "seed")
	hat := findByName(t, seeded["data"], "Hat")

	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "records", "show", locator(hat), "--raw"})
	if err != nil {
		t.Fatalf("show: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), "Hat") {
		t.Fatalf("expected the record name in the card:\n%s", stdout)
	}

	mustRun(t, "--dir", dir, "--user", "U-alice", "records", "rm", locator(hat))
	if _, _, err := runCLI(t, []string{"--dir", dir, "records", "get", locator(hat)}); err == nil {
		t.Fatalf("expected not found after rm")
	}
}

func TestCLI_ConfigSetUser(t *testing.T) {
	cliEnv(t)
	mustRun(t, "config", "set-user", "U-carol")
	env := mustRun(t, "config", "show")
	cfg := env["data"].(map[string]any)["config"].(map[string]any)
	if cfg["currentUser"] != "U-carol" {
		t.Fatalf("expected saved user, got %v", cfg["currentUser"])
	}

	mustRun(t, "config", "enable", "off")
	env = mustRun(t, "config", "show")
	if env["data"].(map[string]any)["enabled"] != false {
		t.Fatalf("expected the button to be disabled")
	}
}

func TestCLI_TextFormat(t *testing.T) {
	dir := cliEnv(t)
	mustRun(t, "--dir", dir, "--user", "U-alice", "seed")
	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--user", "U-alice", "--format", "text", "records", "ls"})
	if err != nil {
		t.Fatalf("ls: %v\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), "Games") || strings.HasPrefix(strings.TrimSpace(string(stdout)), "{") {
		t.Fatalf("expected a text table:\n%s", stdout)
	}
}

func TestCLI_Docs(t *testing.T) {
	cliEnv(t)
	env := mustRun(t, "docs")
	topics, _ := env["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics, got %v", env["data"])
	}
	stdout, _, err := runCLI(t, []string{"docs", "keys", "--raw"})
	if err != nil || !strings.Contains(string(stdout), "# Browser keys") {
		t.Fatalf("expected raw keys page, err=%v\n%s", err, stdout)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("unknown topic should fail")
	}
}
