package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"insurancecost/ml"
)

const validBody = `{"age":19,"sex":"female","bmi":27.9,"children":0,"smoker":"yes","region":"southwest"}`

func postPredict(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) []FieldError {
	t.Helper()
	var payload ValidationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	return payload.Detail
}

func TestHandlePredict(t *testing.T) {
	model := &fakeModel{value: 25293.681}
	mux := newTestMux(NewHandlers(model, nil, RoundingPolicy{Enabled: true, Decimals: 2}, "prediction_label", nil), "")

	rr := postPredict(t, mux, validBody)
	require.Equal(t, http.StatusOK, rr.Code)

	var payload map[string]float64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, 25293.68, payload["prediction"])
	assert.Equal(t, ml.ReferenceApplicant, model.last)
}

func TestHandlePredictWithoutRounding(t *testing.T) {
	model := &fakeModel{value: 25293.681}
	mux := newTestMux(NewHandlers(model, nil, RoundingPolicy{}, "", nil), "")

	rr := postPredict(t, mux, validBody)
	require.Equal(t, http.StatusOK, rr.Code)

	var payload PredictionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, 25293.681, payload.Prediction)
}

func TestHandlePredictMissingFields(t *testing.T) {
	model := &fakeModel{value: 1}
	mux := newTestMux(NewHandlers(model, nil, RoundingPolicy{}, "", nil), "")

	for _, field := range ml.FeatureNames() {
		t.Run(field, func(t *testing.T) {
			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(validBody), &body))
			delete(body, field)
			raw, _ := json.Marshal(body)

			rr := postPredict(t, mux, string(raw))
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			detail := decodeDetail(t, rr)
			require.Len(t, detail, 1)
			assert.Equal(t, []string{"body", field}, detail[0].Loc)
			assert.Equal(t, "value_error.missing", detail[0].Type)
		})
	}
	assert.Zero(t, model.calls, "model must not run on invalid input")
}

func TestHandlePredictReportsEveryFailingField(t *testing.T) {
	mux := newTestMux(NewHandlers(&fakeModel{}, nil, RoundingPolicy{}, "", nil), "")

	rr := postPredict(t, mux, `{"age":"old","bmi":null,"smoker":true}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	detail := decodeDetail(t, rr)
	fields := make([]string, len(detail))
	for i, d := range detail {
		fields[i] = d.Loc[1]
	}
	assert.Equal(t, []string{"age", "sex", "bmi", "children", "smoker", "region"}, fields)
	assert.Equal(t, "type_error.integer", detail[0].Type)
	assert.Equal(t, "value_error.missing", detail[2].Type)
	assert.Equal(t, "type_error.str", detail[4].Type)
}

func TestHandlePredictTypeCoercion(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"numeric strings", `{"age":"19","sex":"female","bmi":"27.9","children":"0","smoker":"yes","region":"southwest"}`, http.StatusOK},
		{"integral float age", `{"age":19.0,"sex":"female","bmi":27.9,"children":0,"smoker":"yes","region":"southwest"}`, http.StatusOK},
		{"integer bmi", `{"age":19,"sex":"female","bmi":28,"children":0,"smoker":"yes","region":"southwest"}`, http.StatusOK},
		{"extra field ignored", `{"age":19,"sex":"female","bmi":27.9,"children":0,"smoker":"yes","region":"southwest","name":"x"}`, http.StatusOK},
		{"non numeric age", `{"age":"nineteen","sex":"female","bmi":27.9,"children":0,"smoker":"yes","region":"southwest"}`, http.StatusUnprocessableEntity},
		{"fractional age", `{"age":19.5,"sex":"female","bmi":27.9,"children":0,"smoker":"yes","region":"southwest"}`, http.StatusUnprocessableEntity},
		{"empty string bmi", `{"age":19,"sex":"female","bmi":"","children":0,"smoker":"yes","region":"southwest"}`, http.StatusUnprocessableEntity},
		{"numeric sex", `{"age":19,"sex":1,"bmi":27.9,"children":0,"smoker":"yes","region":"southwest"}`, http.StatusUnprocessableEntity},
		{"unknown enum passes", `{"age":19,"sex":"other","bmi":27.9,"children":0,"smoker":"maybe","region":"mars"}`, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := &fakeModel{value: 100}
			mux := newTestMux(NewHandlers(model, nil, RoundingPolicy{}, "", nil), "")
			rr := postPredict(t, mux, tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestHandlePredictCoercedValues(t *testing.T) {
	model := &fakeModel{value: 1}
	mux := newTestMux(NewHandlers(model, nil, RoundingPolicy{}, "", nil), "")

	rr := postPredict(t, mux, `{"age":" 42 ","sex":"male","bmi":"31.5","children":2.0,"smoker":"no","region":"northeast"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, ml.Applicant{Age: 42, Sex: "male", BMI: 31.5, Children: 2, Smoker: "no", Region: "northeast"}, model.last)
}

func TestHandlePredictMalformedBody(t *testing.T) {
	mux := newTestMux(NewHandlers(&fakeModel{}, nil, RoundingPolicy{}, "", nil), "")

	for name, body := range map[string]string{
		"truncated": `{"age":19,`,
		"empty":     ``,
		"array":     `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			rr := postPredict(t, mux, body)
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			detail := decodeDetail(t, rr)
			require.Len(t, detail, 1)
			assert.Equal(t, []string{"body"}, detail[0].Loc)
		})
	}
}

func TestHandlePredictRejectsNonJSONContentType(t *testing.T) {
	mux := newTestMux(NewHandlers(&fakeModel{}, nil, RoundingPolicy{}, "", nil), "")
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandlePredictInferenceFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("unseen category")}
	mux := newTestMux(NewHandlers(model, nil, RoundingPolicy{}, "", nil), "")

	rr := postPredict(t, mux, validBody)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "unseen category", "internal detail must not leak")
	assert.Equal(t, 1, model.calls, "no retries")
}

func TestHandlePredictNonFinitePrediction(t *testing.T) {
	policies := map[string]RoundingPolicy{
		"rounding on":  {Enabled: true, Decimals: 2},
		"rounding off": {},
	}
	for name, policy := range policies {
		for _, value := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
			model := &fakeModel{value: value}
			handler := NewHandler(DefaultServerConfig(), NewHandlers(model, nil, policy, "", nil), zap.NewNop())

			rr := postPredict(t, handler, validBody)
			require.Equal(t, http.StatusInternalServerError, rr.Code, "%s, value %v", name, value)

			var payload errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload), "%s, value %v", name, value)
			assert.Equal(t, "internal server error", payload.Error)
		}
	}
}

func TestBundledModelOverflowingInput(t *testing.T) {
	artifact, err := ml.NewLoader(nil).Load(filepath.Join("..", "models", "insurance_model.json"))
	require.NoError(t, err)
	predictor := ml.NewPredictor(artifact.Model, "prediction_label")

	for _, policy := range []RoundingPolicy{{Enabled: true, Decimals: 2}, {}} {
		mux := newTestMux(NewHandlers(predictor, nil, policy, "prediction_label", nil), "")
		rr := postPredict(t, mux, `{"age":19,"sex":"female","bmi":1e308,"children":0,"smoker":"yes","region":"southwest"}`)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
	}
}

func TestWriteJSONUnsupportedValue(t *testing.T) {
	rr := httptest.NewRecorder()
	err := writeJSON(rr, http.StatusOK, PredictionResponse{Prediction: math.Inf(1)})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestHandlePredictPanicBecomes500(t *testing.T) {
	handler := NewHandler(DefaultServerConfig(), NewHandlers(panicModel{}, nil, RoundingPolicy{}, "", nil), zap.NewNop())

	rr := postPredict(t, handler, validBody)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandlePredictBodyTooLarge(t *testing.T) {
	config := DefaultServerConfig()
	config.MaxBodyBytes = 16
	handler := NewHandler(config, NewHandlers(&fakeModel{}, nil, RoundingPolicy{}, "", nil), zap.NewNop())

	rr := postPredict(t, handler, validBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestPredictRequiresPost(t *testing.T) {
	mux := newTestMux(NewHandlers(&fakeModel{}, nil, RoundingPolicy{}, "", nil), "")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/predict", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

// The bundled artifact must load, resolve its output column and produce a
// deterministic, non-negative cost for the reference applicant.
func TestBundledModelEndToEnd(t *testing.T) {
	artifact, err := ml.NewLoader(nil).Load(filepath.Join("..", "models", "insurance_model.json"))
	require.NoError(t, err)
	column, err := ml.ResolvePredictionColumn(artifact.Model, "", nil)
	require.NoError(t, err)

	handler := NewHandler(DefaultServerConfig(),
		NewHandlers(ml.NewPredictor(artifact.Model, column), nil, RoundingPolicy{Enabled: true, Decimals: 2}, column, nil),
		zap.NewNop())

	first := postPredict(t, handler, validBody)
	require.Equal(t, http.StatusOK, first.Code)
	second := postPredict(t, handler, validBody)
	assert.Equal(t, first.Body.String(), second.Body.String())

	var payload PredictionResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &payload))
	assert.GreaterOrEqual(t, payload.Prediction, 0.0)
	assert.InDelta(t, 25293.68, payload.Prediction, 0.01)
}
