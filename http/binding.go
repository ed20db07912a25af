package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	"insurancecost/ml"
)

// FieldError 单个字段的结构校验错误
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationResponse 422响应体
type ValidationResponse struct {
	Detail []FieldError `json:"detail"`
}

// errBodyTooLarge 请求体超过限制
var errBodyTooLarge = errors.New("request body too large")

type predictRequest struct {
	Age      *int     `json:"age" validate:"required"`
	Sex      *string  `json:"sex" validate:"required"`
	BMI      *float64 `json:"bmi" validate:"required"`
	Children *int     `json:"children" validate:"required"`
	Smoker   *string  `json:"smoker" validate:"required"`
	Region   *string  `json:"region" validate:"required"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindApplicant 解析并校验预测请求，只做结构和基本类型校验
func bindApplicant(r *http.Request) (ml.Applicant, []FieldError, error) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ml.Applicant{}, nil, errBodyTooLarge
		}
		return ml.Applicant{}, []FieldError{{Loc: []string{"body"}, Msg: "invalid JSON: " + err.Error(), Type: "value_error.jsondecode"}}, nil
	}

	body, ok := raw.(map[string]any)
	if !ok {
		return ml.Applicant{}, []FieldError{{Loc: []string{"body"}, Msg: "value is not a valid dict", Type: "type_error.dict"}}, nil
	}

	var req predictRequest
	typeErrors := make(map[string]FieldError)
	typeError := func(field, msg, kind string) {
		typeErrors[field] = FieldError{Loc: []string{"body", field}, Msg: msg, Type: kind}
	}

	for _, field := range ml.FeatureNames() {
		value, present := body[field]
		if !present || value == nil {
			continue
		}
		switch field {
		case "age", "children":
			n, ok := coerceInt(value)
			if !ok {
				typeError(field, "value is not a valid integer", "type_error.integer")
				continue
			}
			if field == "age" {
				req.Age = &n
			} else {
				req.Children = &n
			}
		case "bmi":
			f, ok := coerceFloat(value)
			if !ok {
				typeError(field, "value is not a valid float", "type_error.float")
				continue
			}
			req.BMI = &f
		default:
			s, ok := value.(string)
			if !ok {
				typeError(field, "str type expected", "type_error.str")
				continue
			}
			switch field {
			case "sex":
				req.Sex = &s
			case "smoker":
				req.Smoker = &s
			case "region":
				req.Region = &s
			}
		}
	}

	missing := make(map[string]bool)
	if err := requestValidator.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ml.Applicant{}, nil, err
		}
		for _, fe := range verrs {
			missing[fe.Field()] = true
		}
	}

	var detail []FieldError
	for _, field := range ml.FeatureNames() {
		if fe, ok := typeErrors[field]; ok {
			detail = append(detail, fe)
			continue
		}
		if missing[field] {
			detail = append(detail, FieldError{Loc: []string{"body", field}, Msg: "field required", Type: "value_error.missing"})
		}
	}
	if len(detail) > 0 {
		return ml.Applicant{}, detail, nil
	}

	return ml.Applicant{
		Age:      *req.Age,
		Sex:      *req.Sex,
		BMI:      *req.BMI,
		Children: *req.Children,
		Smoker:   *req.Smoker,
		Region:   *req.Region,
	}, nil, nil
}

// coerceInt 接受整数、整数值的浮点数和数字字符串
func coerceInt(value any) (int, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return 0, false
			}
			return int(n), true
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// coerceFloat 接受数字和数字字符串
func coerceFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
