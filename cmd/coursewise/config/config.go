// Package configcmder provides the config command for managing persistent
// coursewise configuration stored in the .coursewise/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent coursewise configuration.

Configuration is stored as config.toml in the .coursewise/ directory and
provides default values for command flags. CLI flags and COURSEWISE_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  generation.provider, generation.target, generation.model,
  moderation.provider, retrieval.min_relevance_score, retrieval.default_top_k,
  chunking.chunk_size, chunking.chunk_overlap, events.provider, events.brokers

Use subcommands to get, set, or list configuration values:
  coursewise config set <key> <value>    Set a configuration value
  coursewise config get <key>            Get a configuration value
  coursewise config list                 List all configuration values

Examples:
  coursewise config set generation.provider anthropic
  coursewise config set embedding.model nomic-embed-text
  coursewise config get retrieval.min_relevance_score
  coursewise config list`

const configShortDesc string = "Manage persistent coursewise configuration"

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
