// Package coursewisecmder
package coursewisecmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/coursewise/cmd/coursewise/ask"
	configcmder "github.com/papercomputeco/coursewise/cmd/coursewise/config"
	ingestcmder "github.com/papercomputeco/coursewise/cmd/coursewise/ingest"
	initcmder "github.com/papercomputeco/coursewise/cmd/coursewise/init"
	servecmder "github.com/papercomputeco/coursewise/cmd/coursewise/serve"
	versioncmder "github.com/papercomputeco/coursewise/cmd/version"
)

const coursewiseLongDesc string = `Coursewise is a curriculum-grounded tutor.

Answers student questions from indexed course material, adapting to the
learning, practice and assessment contexts they are asked in.

Get started using:
  coursewise init                 Create a local .coursewise/ config
  coursewise ingest <dir> ...     Index curriculum files
  coursewise ask "<question>"     Ask the tutor from the terminal
  coursewise serve                Run the HTTP API and MCP server`

const coursewiseShortDesc string = "Coursewise - Curriculum Tutor"

func NewCoursewiseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "coursewise",
		Short:        coursewiseShortDesc,
		Long:         coursewiseLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .coursewise/ directory")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
