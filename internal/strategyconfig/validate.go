package strategyconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Weights ===
	if err := cfg.Weights.Contract().Validate(); err != nil {
		return ValidationError{"weights", err.Error()}
	}

	// === Scoring ===
	if err := cfg.Scoring.Validate(); err != nil {
		return ValidationError{"scoring", err.Error()}
	}

	return nil
}

// Warn returns recommendations that do not stop the program
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Scoring.Overall.BearishDampener == 1 {
		warnings = append(warnings, Warning{
			Code:    "REGIME_DISABLED",
			Message: "bearish_dampener is 1.0, market regime has no effect",
		})
	}

	w := cfg.Weights
	zero := 0
	for _, v := range []float64{w.Technical, w.Fundamental, w.Risk} {
		if v == 0 {
			zero++
		}
	}
	if zero == 2 {
		warnings = append(warnings, Warning{
			Code:    "SINGLE_FACTOR",
			Message: "only one sub-score carries weight",
		})
	}

	if cfg.Scoring.Overall.Ceiling-cfg.Scoring.Overall.Floor < 50 {
		warnings = append(warnings, Warning{
			Code: "NARROW_BAND",
			Message: fmt.Sprintf("overall band [%.0f, %.0f] leaves little room to rank",
				cfg.Scoring.Overall.Floor, cfg.Scoring.Overall.Ceiling),
		})
	}

	return warnings
}
