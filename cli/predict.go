package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qhttp "insurancecost/http"
	"insurancecost/ml"
)

func newPredictCommand(opts *rootOptions) *cobra.Command {
	applicant := ml.ReferenceApplicant

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction through the loaded model and print the response body",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, zap.NewNop())
			if err != nil {
				return err
			}

			value, err := svc.predictor.Predict(context.Background(), applicant)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(qhttp.PredictionResponse{Prediction: svc.rounding().Apply(value)})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&applicant.Age, "age", applicant.Age, "age in years")
	flags.StringVar(&applicant.Sex, "sex", applicant.Sex, "female or male")
	flags.Float64Var(&applicant.BMI, "bmi", applicant.BMI, "body mass index")
	flags.IntVar(&applicant.Children, "children", applicant.Children, "number of dependents")
	flags.StringVar(&applicant.Smoker, "smoker", applicant.Smoker, "yes or no")
	flags.StringVar(&applicant.Region, "region", applicant.Region, "northeast, northwest, southeast or southwest")
	return cmd
}
