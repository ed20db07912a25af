package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"

	"go.uber.org/zap"

	"insurancecost/ml"
)

// Handlers 预测服务的处理器，依赖在启动时注入，之后只读
type Handlers struct {
	predictor ml.ModelProvider
	page      PageSource
	rounding  RoundingPolicy
	column    string
	logger    *zap.Logger
}

// NewHandlers 创建处理器
func NewHandlers(predictor ml.ModelProvider, page PageSource, rounding RoundingPolicy, column string, logger *zap.Logger) *Handlers {
	if page == nil {
		page = EmbeddedPage{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		predictor: predictor,
		page:      page,
		rounding:  rounding,
		column:    column,
		logger:    logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// RegisterHandlers 注册路由。staticDir为空或不存在时不挂载/static/
func RegisterHandlers(mux *http.ServeMux, h *Handlers, staticDir string) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /health", h.handleHealth)

	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		}
	}
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := h.page.Page()
	if err != nil {
		h.logger.Error("index page unavailable", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !isJSONContent(r) {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Detail: []FieldError{{
			Loc:  []string{"body"},
			Msg:  "value is not a valid dict",
			Type: "type_error.dict",
		}}})
		return
	}

	applicant, detail, err := bindApplicant(r)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("bind request", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	if len(detail) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Detail: detail})
		return
	}

	value, err := h.predictor.Predict(r.Context(), applicant)
	if err == nil && (math.IsNaN(value) || math.IsInf(value, 0)) {
		err = fmt.Errorf("%w: %v", ml.ErrNonFinitePrediction, value)
	}
	if err != nil {
		h.logger.Error("inference failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	if err := writeJSON(w, http.StatusOK, PredictionResponse{Prediction: h.rounding.Apply(value)}); err != nil {
		h.logger.Error("encode response", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":            "ok",
		"prediction_column": h.column,
	})
}

// writeJSON 先编码再写状态码，编码失败时返回500
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		body, status = []byte(`{"error":"internal server error"}`), http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
	return err
}
