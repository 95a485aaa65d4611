package cli

import (
	"encoding/json"
	"fmt"

	"github.com/picklr-io/slsloop/internal/ir"
	"github.com/picklr-io/slsloop/internal/naming"
	"github.com/picklr-io/slsloop/internal/plugin/recursiveloop"
	"github.com/picklr-io/slsloop/internal/schema"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the function properties declared by plugins",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	fragments, err := declaredFragments()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(fragments, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// declaredFragments collects the function property fragments of every
// plugin, keyed by provider.
func declaredFragments() (map[string]schema.Fragment, error) {
	h := schema.NewHandler()
	if _, err := recursiveloop.New(recursiveloop.Options{
		Service: &ir.Service{},
		Naming:  naming.AWS{},
		Schema:  h,
	}); err != nil {
		return nil, err
	}

	out := make(map[string]schema.Fragment)
	for _, provider := range h.Providers() {
		out[provider] = h.FunctionProperties(provider)
	}
	return out, nil
}
