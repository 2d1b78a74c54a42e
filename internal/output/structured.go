package output

import (
	"encoding/json"
	"fmt"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"gopkg.in/yaml.v3"
)

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

func (jf *JSONFormatter) Summary(summary *domain.LiabilitySummary) (string, error) {
	return jf.marshal(summary)
}

func (jf *JSONFormatter) Curve(key domain.ScheduleKey, points []domain.CurvePoint) (string, error) {
	return jf.marshal(curveView{Key: key, Points: points})
}

func (jf *JSONFormatter) Steps(key domain.ScheduleKey, steps []domain.RateStep) (string, error) {
	return jf.marshal(stepsView{Key: key, Steps: steps})
}

func (jf *JSONFormatter) Schedule(schedule *domain.BracketSchedule) (string, error) {
	return jf.marshal(newScheduleView(schedule))
}

func (jf *JSONFormatter) Keys(keys []domain.ScheduleKey) (string, error) {
	return jf.marshal(keys)
}

// YAMLFormatter formats results as YAML
type YAMLFormatter struct{}

func (yf *YAMLFormatter) marshal(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

func (yf *YAMLFormatter) Summary(summary *domain.LiabilitySummary) (string, error) {
	return yf.marshal(summary)
}

func (yf *YAMLFormatter) Curve(key domain.ScheduleKey, points []domain.CurvePoint) (string, error) {
	return yf.marshal(curveView{Key: key, Points: points})
}

func (yf *YAMLFormatter) Steps(key domain.ScheduleKey, steps []domain.RateStep) (string, error) {
	return yf.marshal(stepsView{Key: key, Steps: steps})
}

func (yf *YAMLFormatter) Schedule(schedule *domain.BracketSchedule) (string, error) {
	return yf.marshal(newScheduleView(schedule))
}

func (yf *YAMLFormatter) Keys(keys []domain.ScheduleKey) (string, error) {
	return yf.marshal(keys)
}
