package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ModelSummary is what `inspect` reports about a loaded artifact.
type ModelSummary struct {
	Path             string
	Strategy         string
	Size             string
	Features         []string
	PredictionColumn string
	Rounding         string
}

func newInspectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the model artifact and print what the server would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, zap.NewNop())
			if err != nil {
				return err
			}

			pp.ColoringEnabled = false
			_, err = pp.Fprintln(cmd.OutOrStdout(), svc.summary())
			return err
		},
	}
}

func (s *service) summary() ModelSummary {
	rounding := "off"
	if s.config.Response.Round {
		rounding = fmt.Sprintf("%d decimals", s.config.Response.Decimals)
	}
	return ModelSummary{
		Path:             s.artifact.Path,
		Strategy:         s.artifact.Strategy,
		Size:             humanize.Bytes(uint64(s.artifact.Size)),
		Features:         s.artifact.Model.Features(),
		PredictionColumn: s.column,
		Rounding:         rounding,
	}
}
