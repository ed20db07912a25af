package main

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"insurancecost/config"
	"insurancecost/logging"
	"insurancecost/ml"
)

func main() {
	in := flag.String("in", "./models/insurance_model.json", "JSON pipeline artifact")
	out := flag.String("out", "./models/insurance_model.gob", "gob output path")
	tolerance := flag.Float64("tolerance", 1e-9, "max allowed prediction difference after export")
	flag.Parse()

	logger, err := logging.New(config.LogConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	source, err := ml.NewLoader(logger, ml.PipelineStrategy{}).Load(*in)
	if err != nil {
		logger.Fatal("failed to load artifact", zap.Error(err))
	}
	pipeline, ok := source.Model.(*ml.Pipeline)
	if !ok {
		logger.Fatal("artifact is not a pipeline", zap.String("type", fmt.Sprintf("%T", source.Model)))
	}

	var buf bytes.Buffer
	if err := ml.WriteGob(&buf, pipeline); err != nil {
		logger.Fatal("failed to encode pipeline", zap.Error(err))
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		logger.Fatal("failed to create model dir", zap.Error(err))
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		logger.Fatal("failed to save model", zap.Error(err))
	}

	exported, err := ml.NewLoader(logger, ml.GobStrategy{}).Load(*out)
	if err != nil {
		logger.Fatal("exported model does not load back", zap.Error(err))
	}
	maxDiff, err := compareModels(source.Model, exported.Model, sampleApplicants())
	if err != nil {
		logger.Fatal("failed to compare models", zap.Error(err))
	}
	if maxDiff > *tolerance {
		logger.Fatal("exported model disagrees with source", zap.Float64("max_diff", maxDiff))
	}

	logger.Info("model exported", zap.String("path", *out), zap.Float64("max_diff", maxDiff))
}

// sampleApplicants covers every category of every encoded column.
func sampleApplicants() []ml.Applicant {
	regions := []string{"northeast", "northwest", "southeast", "southwest"}
	applicants := []ml.Applicant{ml.ReferenceApplicant}
	for i, region := range regions {
		applicants = append(applicants, ml.Applicant{
			Age:      25 + 10*i,
			Sex:      []string{"female", "male"}[i%2],
			BMI:      22.5 + 3*float64(i),
			Children: i,
			Smoker:   []string{"no", "yes"}[i/2],
			Region:   region,
		})
	}
	return applicants
}

func compareModels(a, b ml.Model, applicants []ml.Applicant) (float64, error) {
	var maxDiff float64
	for _, applicant := range applicants {
		outA, err := a.PredictFrame(applicant.Frame())
		if err != nil {
			return 0, err
		}
		outB, err := b.PredictFrame(applicant.Frame())
		if err != nil {
			return 0, err
		}
		for _, column := range ml.OutputColumns(a, outA) {
			va, err := outA.Float(column)
			if err != nil {
				return 0, err
			}
			vb, err := outB.Float(column)
			if err != nil {
				return 0, err
			}
			maxDiff = math.Max(maxDiff, math.Abs(va-vb))
		}
	}
	return maxDiff, nil
}
