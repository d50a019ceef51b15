// Package creatormemcmder
package creatormemcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/creatormem/cmd/creatormem/config"
	initcmder "github.com/papercomputeco/creatormem/cmd/creatormem/init"
	inspectcmder "github.com/papercomputeco/creatormem/cmd/creatormem/inspect"
	servecmder "github.com/papercomputeco/creatormem/cmd/creatormem/serve"
	versioncmder "github.com/papercomputeco/creatormem/cmd/version"
)

const creatormemLongDesc string = `creatormem is a layered memory service for creator contract assistants.

It keeps atomic facts, an evolving profile summary and a raw interaction log
per user, audits every conflict and profile change, and derives
recommendations from the profile.

Commands:
  creatormem serve              Run the API and MCP server
  creatormem inspect <user-id>  Inspect a user's memory on a running server
  creatormem init               Initialize a local .creatormem/ directory
  creatormem config             Manage persistent configuration`

const creatormemShortDesc string = "creatormem - creator user memory"

func NewCreatormemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "creatormem",
		Short:        creatormemShortDesc,
		Long:         creatormemLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .creatormem/ directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(inspectcmder.NewInspectCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
