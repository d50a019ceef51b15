// Package configcmder provides the config command for managing persistent
// creatormem configuration stored in the .creatormem/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent creatormem configuration.

Configuration is stored as config.toml in the .creatormem/ directory and
provides default values for command flags. CLI flags and CREATORMEM_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  api.listen, client.api_target, memory.diff_mode,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  eventstream.workers, log.json

Use subcommands to get, set, or list configuration values:
  creatormem config set <key> <value>    Set a configuration value
  creatormem config get <key>            Get a configuration value
  creatormem config list                 List all configuration values

Examples:
  creatormem config set storage.provider sqlite
  creatormem config set memory.diff_mode structural
  creatormem config get storage.provider
  creatormem config list`

const configShortDesc string = "Manage persistent creatormem configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
