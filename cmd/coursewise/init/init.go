// Package initcmder provides the init command for initializing a local
// .coursewise directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/coursewise/pkg/cliui"
	"github.com/papercomputeco/coursewise/pkg/config"
)

const (
	dirName    = ".coursewise"
	configFile = "config.toml"

	remoteTimeout = 15 * time.Second
)

const initLongDesc string = `Initialize a new .coursewise/ directory in the current working directory.

Creates a local .coursewise/ directory that takes precedence over the default
~/.coursewise/ directory for configuration and the local sqlite-vec index,
and writes a config.toml with default values.

Use --preset to start from a provider preset (openai, anthropic, gemini,
ollama) or from a config.toml published at an http(s) URL. A preset always
overwrites an existing config.toml.

Examples:
  coursewise init
  coursewise init --preset openai
  coursewise init --preset https://example.com/school/coursewise.toml`

const initShortDesc string = "Initialize a local .coursewise/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Provider preset name or URL of a config.toml")

	return cmd
}

func runInit(ctx context.Context, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .coursewise directory: %w", err)
	}

	path := filepath.Join(dir, configFile)
	_, statErr := os.Stat(path)
	exists := statErr == nil

	switch {
	case preset == "" && exists:
		fmt.Printf("\n  %s %s\n\n", cliui.DimStyle.Render("Already initialized:"), dir)
		return nil

	case preset == "":
		cfger, err := config.NewConfiger(dir)
		if err != nil {
			return err
		}
		if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
			return err
		}

	case isURL(preset):
		data, err := fetchRemoteConfig(ctx, preset)
		if err != nil {
			return err
		}
		if _, err := config.ParseConfigTOML(data); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

	default:
		cfg, err := config.PresetConfig(preset)
		if err != nil {
			return err
		}
		cfger, err := config.NewConfiger(dir)
		if err != nil {
			return err
		}
		if err := cfger.SaveConfig(cfg); err != nil {
			return err
		}
	}

	fmt.Printf("\n  %s Initialized %s\n\n", cliui.SuccessMark, cliui.KeyStyle.Render(dir))
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fetchRemoteConfig(ctx context.Context, url string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}
	return data, nil
}
