package stack

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/coursewise/pkg/config"
)

// LoadConfig resolves the layered configuration for cmd: flags listed in
// registryKeys override environment variables, which override config.toml.
func LoadConfig(cmd *cobra.Command, registryKeys []string) (*config.Config, string, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.ProviderFlags, registryKeys)

	return config.FromViper(v), configDir, nil
}
