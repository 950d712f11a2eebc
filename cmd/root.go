package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediasearch",
	Short: "Unified media-asset search engine",
	Long: `mediasearch answers keyword and semantic similarity queries over a
catalog of video, audio and image assets, returning ranked, paginated
results enriched with signed preview URLs.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	cobra.OnInitialize(settingDefaultConfig)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
