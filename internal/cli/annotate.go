package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/picklr-io/slsloop/internal/lifecycle"
	"github.com/picklr-io/slsloop/internal/logging"
	"github.com/picklr-io/slsloop/internal/naming"
	"github.com/picklr-io/slsloop/internal/plugin/recursiveloop"
	"github.com/spf13/cobra"
)

var (
	annotateOut            string
	annotateTemplate       string
	annotateSkipValidation bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [dir]",
	Short: "Write recursiveLoop settings into the compiled template",
	Long: `Loads the service descriptor and its compiled CloudFormation template,
runs the package:compileFunctions hooks and writes the template back.

Functions with recursiveLoop set to Allow or Terminate get a RecursiveLoop
property on their AWS::Lambda::Function resource. Other values are
rejected by validation, or ignored with --skip-validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateOut, "out", "o", "", "Write the template to this file instead of in place")
	annotateCmd.Flags().StringVarP(&annotateTemplate, "template", "t", "", "Compiled template to annotate")
	annotateCmd.Flags().BoolVar(&annotateSkipValidation, "skip-validation", false, "Skip schema validation of the service")
}

type annotateOptions struct {
	template       string
	out            string
	skipValidation bool
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	dir, err := projectDir(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	if annotateTemplate != "" {
		cfg.Template = annotateTemplate
	}

	p, err := openProject(cmd.Context(), dir, cfg)
	if err != nil {
		return err
	}
	return p.annotate(cmd.OutOrStdout(), annotateOptions{
		template:       cfg.Template,
		out:            annotateOut,
		skipValidation: annotateSkipValidation,
	})
}

func (p *project) annotate(w io.Writer, opts annotateOptions) error {
	if !opts.skipValidation {
		if err := p.schema.ValidateService(p.service); err != nil {
			return err
		}
	}

	tpl, err := p.loader.LoadTemplate(opts.template)
	if err != nil {
		return err
	}
	p.service.Provider.CompiledTemplate = tpl

	if err := p.hooks.Run(lifecycle.EventCompileFunctions); err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = opts.template
	}
	if err := p.loader.WriteTemplate(out, tpl); err != nil {
		return err
	}
	logging.Info("template written", "path", p.loader.Path(out))

	annotated := 0
	for _, name := range slices.Sorted(maps.Keys(p.service.Functions)) {
		fn := p.service.Functions[name]
		if fn == nil || fn.RecursiveLoop == nil || !recursiveloop.IsAccepted(*fn.RecursiveLoop) {
			continue
		}
		annotated++
		fmt.Fprintf(w, "  %s: %s = %s\n", naming.AWS{}.LambdaLogicalID(name), recursiveloop.ResourceProperty, *fn.RecursiveLoop)
	}
	fmt.Fprintf(w, "Annotated %d of %d functions.\n", annotated, len(p.service.Functions))
	return nil
}
