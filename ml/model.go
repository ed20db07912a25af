package ml

// Model runs batch inference on a frame and returns the input row with its
// output columns appended. Implementations must be safe for concurrent use
// and must not mutate the frame they are given.
type Model interface {
	Features() []string
	PredictFrame(frame Frame) (Frame, error)
}

// Transformer is one preprocessing step of a pipeline.
type Transformer interface {
	Transform(frame Frame) (Frame, error)
}

// Estimator maps an ordered feature vector to a regression value.
type Estimator interface {
	FeatureNames() []string
	Predict(features []float64) (float64, error)
}
