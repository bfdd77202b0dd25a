package register

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func readServers(t *testing.T, configPath string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	servers, ok := config["mcpServers"].(map[string]any)
	if !ok {
		t.Fatal("mcpServers not found or not an object")
	}
	return servers
}

func entryArgs(t *testing.T, entry map[string]any) []string {
	t.Helper()
	raw, _ := entry["args"].([]any)
	args := make([]string, 0, len(raw))
	for _, arg := range raw {
		args = append(args, arg.(string))
	}
	if runtime.GOOS == "windows" && len(args) >= 2 {
		return args[2:]
	}
	return args
}

func Test_DeriveServerName(t *testing.T) {
	tests := []struct {
		name       string
		binaryPath string
		want       string
	}{
		{"plain binary", "docimpact", "docimpact"},
		{"strip .exe", "docimpact.exe", "docimpact"},
		{"strip -mcp suffix", "docimpact-mcp", "docimpact"},
		{"strip .exe and -mcp", "docimpact-mcp.exe", "docimpact"},
		{"full path stripped to base", "/usr/local/bin/docimpact", "docimpact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveServerName(tt.binaryPath); got != tt.want {
				t.Errorf("DeriveServerName(%q) = %q, want %q", tt.binaryPath, got, tt.want)
			}
		})
	}
}

func Test_Register_ProjectPinsRoot(t *testing.T) {
	dir := t.TempDir()

	configPath, err := Register(Options{
		Scope:      ScopeProject,
		Directory:  dir,
		BinaryPath: "/usr/local/bin/docimpact",
		ServerArgs: []string{"--mode", "substring"},
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	absDir, _ := filepath.Abs(dir)
	if configPath != filepath.Join(absDir, ".mcp.json") {
		t.Errorf("configPath = %q", configPath)
	}

	entry, ok := readServers(t, configPath)["docimpact"].(map[string]any)
	if !ok {
		t.Fatal("docimpact entry not found")
	}
	want := []string{"serve", "--mode", "substring", "--root", absDir}
	if got := entryArgs(t, entry); !slices.Equal(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func Test_Register_ProjectKeepsExplicitRoot(t *testing.T) {
	dir := t.TempDir()

	configPath, err := Register(Options{
		Scope:      ScopeProject,
		Directory:  dir,
		ServerName: "docs",
		BinaryPath: "/usr/local/bin/docimpact",
		ServerArgs: []string{"--root=/srv/docs"},
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	entry := readServers(t, configPath)["docs"].(map[string]any)
	want := []string{"serve", "--root=/srv/docs"}
	if got := entryArgs(t, entry); !slices.Equal(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func Test_Register_UnknownScope(t *testing.T) {
	if _, err := Register(Options{Scope: "global", BinaryPath: "/bin/docimpact"}); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func Test_writeConfig_UpdatesExistingEntry(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")

	initial := map[string]any{
		"theme": "dark",
		"mcpServers": map[string]any{
			"other-server": map[string]any{"command": "/usr/bin/other"},
			"docimpact":    map[string]any{"command": "/old/path"},
		},
	}
	initialData, _ := json.MarshalIndent(initial, "", "  ")
	if err := os.WriteFile(configPath, initialData, 0644); err != nil {
		t.Fatal(err)
	}

	if err := writeConfig(configPath, "docimpact", ServerEntry{Command: "/new/path", Args: []string{"serve"}}); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}

	servers := readServers(t, configPath)
	if servers["other-server"].(map[string]any)["command"] != "/usr/bin/other" {
		t.Error("other-server entry changed unexpectedly")
	}
	if servers["docimpact"].(map[string]any)["command"] != "/new/path" {
		t.Error("docimpact entry not updated")
	}

	data, _ := os.ReadFile(configPath)
	var config map[string]any
	json.Unmarshal(data, &config)
	if config["theme"] != "dark" {
		t.Error("unrelated top-level key was dropped")
	}
}

func Test_writeConfig_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")
	os.WriteFile(configPath, []byte("not valid json{{{"), 0644)

	if err := writeConfig(configPath, "docimpact", ServerEntry{Command: "/usr/bin/docimpact"}); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func Test_writeConfig_ServersNotObject(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".mcp.json")
	os.WriteFile(configPath, []byte(`{"mcpServers": []}`), 0644)

	if err := writeConfig(configPath, "docimpact", ServerEntry{Command: "/usr/bin/docimpact"}); err == nil {
		t.Fatal("expected error when mcpServers is not an object")
	}
}

func Test_buildEntry(t *testing.T) {
	binaryPath := "/usr/local/bin/docimpact"
	serverArgs := []string{"serve", "--root", "/projects/docs"}

	entry := buildEntry(binaryPath, serverArgs)

	if runtime.GOOS == "windows" {
		if entry.Command != "cmd" || len(entry.Args) < 2 || entry.Args[0] != "/C" || entry.Args[1] != binaryPath {
			t.Errorf("entry = %+v", entry)
		}
		return
	}
	if entry.Command != binaryPath {
		t.Errorf("command = %q, want %q", entry.Command, binaryPath)
	}
	if !slices.Equal(entry.Args, serverArgs) {
		t.Errorf("args = %v, want %v", entry.Args, serverArgs)
	}
}

func Test_resolveConfigPath_User(t *testing.T) {
	got, err := resolveConfigPath(ScopeUser, "")
	if err != nil {
		t.Fatalf("resolveConfigPath() error: %v", err)
	}
	homeDir, _ := os.UserHomeDir()
	if want := filepath.Join(homeDir, ".claude.json"); got != want {
		t.Errorf("resolveConfigPath(user) = %q, want %q", got, want)
	}
}
