package cli

import (
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "slsloop",
	Short: "Recursive loop detection settings for serverless templates",
	Long: `slsloop adds a per-function recursiveLoop setting to serverless service
descriptors and writes it into the compiled CloudFormation template.

  functions:
    hello:
      handler: handler.hello
      recursiveLoop: Terminate   # or Allow

The value lands on the RecursiveLoop property of the function's
AWS::Lambda::Function resource.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
