package ml

// LinearRegressor computes Intercept + sum(Coefficients[i] * x[i]).
type LinearRegressor struct {
	Features     []string
	Coefficients []float64
	Intercept    float64
}

func (lr *LinearRegressor) FeatureNames() []string {
	return append([]string(nil), lr.Features...)
}

func (lr *LinearRegressor) Predict(features []float64) (float64, error) {
	if len(features) != len(lr.Coefficients) {
		return 0, errFeatureLength
	}
	y := lr.Intercept
	for i, x := range features {
		y += lr.Coefficients[i] * x
	}
	return y, nil
}
