package strategyconfig

import (
	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/scoring"
)

// DefaultStrategyID names the built-in rules
const DefaultStrategyID = "multibagger_default"

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta    Meta               `yaml:"meta" json:"meta"`
	Weights Weights            `yaml:"weights" json:"weights"`
	Scoring scoring.Thresholds `yaml:"scoring" json:"scoring"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Weights are the default sub-score weights; scan requests override them
type Weights struct {
	Technical   float64 `yaml:"technical" json:"technical"`
	Fundamental float64 `yaml:"fundamental" json:"fundamental"`
	Risk        float64 `yaml:"risk" json:"risk"`
}

// Contract converts to the scoring weights
func (w Weights) Contract() contracts.Weights {
	return contracts.Weights{Technical: w.Technical, Fundamental: w.Fundamental, Risk: w.Risk}
}

// Default returns the built-in strategy.
// YAML files are decoded on top of it, so they only need the fields they change.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: DefaultStrategyID,
			Version:    "1",
		},
		Weights: Weights{Technical: 1, Fundamental: 1, Risk: 1},
		Scoring: scoring.DefaultThresholds(),
	}
}
