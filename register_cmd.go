package main

import (
	"fmt"

	"github.com/lexandro/docimpact/register"
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	var serverName string

	cmd := &cobra.Command{
		Use:   "register project|user [directory] [-- serve-flags...]",
		Short: "Add docimpact to an MCP client configuration",
		Long: `register writes a "docimpact serve" entry into <directory>/.mcp.json (project
scope, default directory ".") or ~/.claude.json (user scope). Arguments after "--"
are forwarded to serve.

Examples:
  docimpact register project
  docimpact register project ./docs -- --mode substring
  docimpact register user -- --root /srv/docs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			positional, forwarded := splitAtDash(args, cmd.ArgsLenAtDash())
			if len(positional) == 0 {
				return fmt.Errorf("scope is required (project or user)")
			}

			options := register.Options{
				Scope:      register.Scope(positional[0]),
				ServerName: serverName,
				ServerArgs: forwarded,
			}
			switch {
			case options.Scope == register.ScopeProject && len(positional) == 2:
				options.Directory = positional[1]
			case len(positional) > 1:
				return fmt.Errorf("unexpected arguments %v", positional[1:])
			}

			configPath, err := register.Register(options)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered docimpact in %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverName, "name", "", "MCP server name (default: derived from the binary name)")
	return cmd
}

// splitAtDash separates positional arguments from those after "--". dashAt is
// cobra's ArgsLenAtDash, -1 when there was no "--".
func splitAtDash(args []string, dashAt int) (positional []string, forwarded []string) {
	if dashAt < 0 || dashAt > len(args) {
		return args, nil
	}
	return args[:dashAt], args[dashAt:]
}
