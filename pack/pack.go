// Package pack loads the planet presets a game is set up from. A pack names
// a fixed set of planets and the cities on each; every game starts as an
// instance of one pack.
package pack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type City struct {
	Name string `yaml:"name"`
}

type Planet struct {
	Name   string `yaml:"name"`
	Cities []City `yaml:"cities"`
}

type Pack struct {
	Name    string   `yaml:"name"`
	Planets []Planet `yaml:"planets"`
}

// Load reads all packs from a YAML file and validates them.
func Load(path string) ([]Pack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read packs: %w", err)
	}

	var packs []Pack
	if err := yaml.Unmarshal(raw, &packs); err != nil {
		return nil, fmt.Errorf("parse packs: %w", err)
	}

	for _, p := range packs {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("pack %q: %w", p.Name, err)
		}
	}
	return packs, nil
}

// Find returns the pack with the given name, or false if none matches.
func Find(packs []Pack, name string) (Pack, bool) {
	for _, p := range packs {
		if p.Name == name {
			return p, true
		}
	}
	return Pack{}, false
}

func validate(p Pack) error {
	if p.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(p.Planets) < 2 {
		return fmt.Errorf("needs at least 2 planets, has %d", len(p.Planets))
	}
	for _, planet := range p.Planets {
		if planet.Name == "" {
			return fmt.Errorf("planet with empty name")
		}
		if len(planet.Cities) == 0 {
			return fmt.Errorf("planet %q has no cities", planet.Name)
		}
		for _, city := range planet.Cities {
			if city.Name == "" {
				return fmt.Errorf("planet %q has a city with empty name", planet.Name)
			}
		}
	}
	return nil
}
