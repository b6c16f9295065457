package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/circleworks/beacon/internal/session"
	"github.com/circleworks/beacon/internal/types"
	"github.com/circleworks/beacon/internal/validation"
)

// seedIntent is the YAML shape of one seeded intent.
type seedIntent struct {
	Kind     string   `yaml:"kind"`
	Level    string   `yaml:"level"`
	Author   string   `yaml:"author"`
	Tags     []string `yaml:"tags"`
	Context  string   `yaml:"context"`
	Location *struct {
		City    string  `yaml:"city"`
		Country string  `yaml:"country"`
		Lat     float64 `yaml:"lat"`
		Lng     float64 `yaml:"lng"`
	} `yaml:"location"`
}

// seedDefaultSession loads intents from a YAML file into the default
// session's store and returns how many were created. Invalid entries
// abort the load; a partially seeded store would be confusing.
func seedDefaultSession(sessions *session.Manager, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var seeds []seedIntent
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	inputs := make([]types.NewIntent, 0, len(seeds))
	for i, s := range seeds {
		input := types.NewIntent{
			Kind:    types.Kind(s.Kind),
			Level:   types.Level(s.Level),
			Author:  s.Author,
			Tags:    s.Tags,
			Context: s.Context,
		}
		if s.Location != nil {
			input.Location = &types.Location{
				City:    s.Location.City,
				Country: s.Location.Country,
				Lat:     s.Location.Lat,
				Lng:     s.Location.Lng,
			}
		}
		if errs := validation.ValidateNewIntent(input); len(errs) > 0 {
			return 0, fmt.Errorf("seed entry %d: %s: %s", i, errs[0].Field, errs[0].Message)
		}
		inputs = append(inputs, input)
	}

	sess, err := sessions.Get(session.DefaultSessionID)
	if err != nil {
		return 0, err
	}
	for _, input := range inputs {
		sess.Store.Create(input)
	}
	return len(inputs), nil
}
