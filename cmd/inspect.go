package cmd

import (
	"github.com/spf13/cobra"

	"github.com/devbotsxyz/xcresult-annotate/internal/render"
	"github.com/devbotsxyz/xcresult-annotate/internal/xcresult"
)

var (
	flagFormat string
	flagWidth  int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <bundle>",
	Short: "Print the parsed contents of a result bundle",
	Long: `Parse a result bundle and print its actions, metrics and issues.

Use --format json or --format yaml for machine-readable output.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&flagFormat, "format", "f", "text", "output format: text, json or yaml")
	inspectCmd.Flags().IntVar(&flagWidth, "width", render.DefaultWidth, "wrap text output at this width")
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := render.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg := workspace.Config.Xcresulttool
	parser := xcresult.NewParser(xcresult.NewToolLoader(cfg.GetXcrun(), xcresult.LegacyMode(cfg.GetLegacy())))

	bundle, err := parser.ParseBundle(GetContext(), args[0])
	if err != nil {
		return err
	}
	return render.Bundle(cmd.OutOrStdout(), bundle, format, flagWidth)
}
