package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/picklr-io/slsloop/internal/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate function settings in the service descriptor",
	Long:  `Checks every function attribute declared by plugins, such as recursiveLoop, against its schema.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, err := projectDir(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, "Loading service... ")
	p, err := openProject(cmd.Context(), dir, cfg)
	if err != nil {
		fmt.Fprintln(w, "FAILED")
		return err
	}
	fmt.Fprintln(w, "OK")

	return p.validate(w)
}

func (p *project) validate(w io.Writer) error {
	fmt.Fprint(w, "Checking functions... ")
	err := p.schema.ValidateService(p.service)
	if err == nil {
		fmt.Fprintln(w, "OK")
		fmt.Fprintln(w, "\nConfiguration is valid!")
		return nil
	}

	fmt.Fprintln(w, "FAILED")
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		for _, v := range verr.Violations {
			fmt.Fprintf(w, "  - %s\n", v)
		}
		return fmt.Errorf("validation failed: %d invalid function setting(s)", len(verr.Violations))
	}
	return fmt.Errorf("validation failed: %w", err)
}
