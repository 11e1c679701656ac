package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/model"
)

type predictOutput struct {
	Prediction   float64         `json:"prediction"`
	Cost         string          `json:"cost"`
	ModelVersion string          `json:"model_version"`
	Attributes   model.Applicant `json:"attributes"`
}

func newPredictCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the annual cost for one applicant using local artifacts",
		Example: `  medcostctl predict --age 19 --bmi 27.9 --children 0 --sex female --smoker yes --region southwest
  medcostctl predict --artifacts s3://models/insurance --age 40 --bmi 31 --children 2 --sex male --smoker no --region northwest --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd, v)

			attrs := model.RawAttributes{}
			for _, name := range []string{model.AttrAge, model.AttrBMI, model.AttrChildren} {
				if cmd.Flags().Changed(name) {
					f, _ := cmd.Flags().GetFloat64(name)
					attrs[name] = f
				}
			}
			for _, name := range []string{model.AttrSex, model.AttrSmoker, model.AttrRegion} {
				if cmd.Flags().Changed(name) {
					s, _ := cmd.Flags().GetString(name)
					attrs[name] = s
				}
			}

			applicant, err := model.ParseApplicant(attrs)
			if err != nil {
				return err
			}

			set, err := loadArtifacts(cmd, v, logger)
			if err != nil {
				return err
			}
			encoder, predictor, err := set.Pipeline(logger, nil)
			if err != nil {
				return err
			}

			vec, err := encoder.EncodeApplicant(applicant)
			if err != nil {
				return err
			}
			raw, err := predictor.Predict(cmd.Context(), vec)
			if err != nil {
				return err
			}
			prediction, err := model.NewCostPrediction(applicant, raw, set.Version())
			if err != nil {
				return err
			}

			out := predictOutput{
				Prediction:   prediction.RawCost(),
				Cost:         prediction.Cost().StringFixed(2),
				ModelVersion: prediction.ModelVersion(),
				Attributes:   applicant,
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Predicted annual cost: %s (model %s)\n", out.Cost, out.ModelVersion)
			return err
		},
	}

	cmd.Flags().Float64(model.AttrAge, 0, "age in years")
	cmd.Flags().Float64(model.AttrBMI, 0, "body mass index")
	cmd.Flags().Float64(model.AttrChildren, 0, "number of dependents")
	cmd.Flags().String(model.AttrSex, "", "female or male")
	cmd.Flags().String(model.AttrSmoker, "", "yes or no")
	cmd.Flags().String(model.AttrRegion, "", "northeast, northwest, southeast or southwest")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}
