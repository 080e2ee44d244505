package main

import (
	"context"
	"fmt"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func validateCmd(a *app) *cobra.Command {
	var input string
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a snapshot against the model rules without translating it",
		Long: `Decode the input snapshot and run the mesh checks and model rules over it
as is. No pass is applied. Violations are printed one per line; the command
fails when any of them blocks translation, or on any warning with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.validate(cmd.Context(), input, strict)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input snapshot (JSON)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings as well")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (a *app) validate(ctx context.Context, input string, strict bool) error {
	m, err := loadModel(input, a.logger)
	if err != nil {
		return err
	}
	res, err := m.Validate(ctx, core.NewDefaultRulesEngine())
	if err != nil {
		return err
	}
	printViolations(a.out, res)
	a.logger.Debug("model validated",
		zap.String("model", m.Name),
		zap.Int("violations", len(res.Violations)))
	if res.HasBlocking() {
		return &domain.RuleViolationError{Result: res}
	}
	if strict {
		for _, v := range res.Violations {
			if v.Severity == domain.SeverityWarn {
				return fmt.Errorf("%s: %d violation(s) in strict mode", m.Name, len(res.Violations))
			}
		}
	}
	fmt.Fprintf(a.out, "%s: ok\n", m.Name)
	return nil
}
