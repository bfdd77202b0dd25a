// Package register adds the docimpact MCP server to a Claude configuration file.
package register

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Scope selects which configuration file is written.
type Scope string

const (
	// ScopeProject writes <directory>/.mcp.json.
	ScopeProject Scope = "project"
	// ScopeUser writes ~/.claude.json.
	ScopeUser Scope = "user"
)

// ServeCommand is the subcommand the registered entry runs.
const ServeCommand = "serve"

// ServerEntry is one mcpServers entry.
type ServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Options describes one registration.
type Options struct {
	Scope      Scope
	Directory  string   // project scope only; defaults to "."
	ServerName string   // defaults to the name derived from the binary
	ServerArgs []string // forwarded after "serve"
	BinaryPath string   // defaults to the running executable
}

// Register writes the entry and returns the path of the configuration file.
// For project scope the entry is pinned to the project directory with --root
// unless ServerArgs already sets it.
func Register(options Options) (string, error) {
	if options.Scope != ScopeProject && options.Scope != ScopeUser {
		return "", fmt.Errorf("unknown scope %q (must be %q or %q)", options.Scope, ScopeProject, ScopeUser)
	}

	binaryPath := options.BinaryPath
	if binaryPath == "" {
		detected, err := detectBinaryPath()
		if err != nil {
			return "", fmt.Errorf("detecting binary path: %w", err)
		}
		binaryPath = detected
	}

	serverName := options.ServerName
	if serverName == "" {
		serverName = DeriveServerName(binaryPath)
	}

	directory := options.Directory
	if directory == "" {
		directory = "."
	}
	configPath, err := resolveConfigPath(options.Scope, directory)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}

	serverArgs := append([]string{ServeCommand}, options.ServerArgs...)
	if options.Scope == ScopeProject && !hasRootFlag(options.ServerArgs) {
		serverArgs = append(serverArgs, "--root", filepath.Dir(configPath))
	}

	if err := writeConfig(configPath, serverName, buildEntry(binaryPath, serverArgs)); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return configPath, nil
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func hasRootFlag(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return arg == "--root" || strings.HasPrefix(arg, "--root=")
	})
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope Scope, directory string) (string, error) {
	if scope == ScopeProject {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

func buildEntry(binaryPath string, serverArgs []string) ServerEntry {
	if runtime.GOOS == "windows" {
		args := append([]string{"/C", binaryPath}, serverArgs...)
		return ServerEntry{Command: "cmd", Args: args}
	}
	return ServerEntry{Command: binaryPath, Args: serverArgs}
}

// writeConfig adds or replaces serverName under mcpServers, keeping every other key,
// and replaces the file atomically.
func writeConfig(configPath string, serverName string, entry ServerEntry) error {
	config := map[string]any{
		"mcpServers": map[string]any{},
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	}

	servers, ok := config["mcpServers"]
	if !ok || servers == nil {
		servers = map[string]any{}
		config["mcpServers"] = servers
	}
	serversMap, ok := servers.(map[string]any)
	if !ok {
		return fmt.Errorf("mcpServers in %s is not an object", configPath)
	}
	serversMap[serverName] = entry

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	configDir := filepath.Dir(configPath)
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}
	return nil
}
