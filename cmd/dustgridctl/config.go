package main

import (
	"encoding/json"
	"fmt"
	"os"

	"dustgrid/pkg/dustgrid"
)

// runConfig is the JSON config document accepted by run and sweep:
// simulation parameters plus, for sweeps, the agent counts to iterate.
type runConfig struct {
	Request     dustgrid.RunRequest
	AgentCounts []int
	Notes       string
}

func loadRunConfig(path string) (runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runConfig{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return runConfig{}, err
	}

	var cfg runConfig
	if v, ok := asInt(raw["num_agents"]); ok {
		cfg.Request.NumAgents = v
	}
	if v, ok := asInt(raw["width"]); ok {
		cfg.Request.Width = v
	}
	if v, ok := asInt(raw["height"]); ok {
		cfg.Request.Height = v
	}
	if v, ok := asFloat64(raw["dirty_fraction"]); ok {
		cfg.Request.DirtyFraction = v
	}
	if v, ok := asInt(raw["max_steps"]); ok {
		cfg.Request.MaxSteps = v
	}
	if v, ok := asUint64(raw["seed"]); ok {
		cfg.Request.Seed = v
	}
	if v, ok := asString(raw["notes"]); ok {
		cfg.Notes = v
	}
	if list, ok := raw["agent_counts"].([]any); ok {
		for _, item := range list {
			count, ok := asInt(item)
			if !ok {
				return runConfig{}, fmt.Errorf("agent_counts entries must be integers, got %v", item)
			}
			cfg.AgentCounts = append(cfg.AgentCounts, count)
		}
	}
	return cfg, nil
}

func loadOrDefaultRunConfig(path string) (runConfig, error) {
	if path == "" {
		return runConfig{}, nil
	}
	cfg, err := loadRunConfig(path)
	if err != nil {
		return runConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
