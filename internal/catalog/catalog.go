// Package catalog loads the questionnaire step definitions.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/models"
	"gopkg.in/yaml.v3"
)

// StepCount is the number of sections every questionnaire has.
const StepCount = 7

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

type stepDef struct {
	ID          int      `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Guidance    string   `yaml:"guidance"`
	Question    string   `yaml:"question"`
	Categories  []string `yaml:"categories"`
}

type file struct {
	Steps []stepDef `yaml:"steps"`
}

// Load returns the built-in seven-step catalog.
func Load() ([]models.Step, error) {
	return Parse(defaultCatalog)
}

func Parse(data []byte) ([]models.Step, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	if len(f.Steps) != StepCount {
		return nil, fmt.Errorf("%w: expected %d steps, got %d", ErrInvalidCatalog, StepCount, len(f.Steps))
	}

	steps := make([]models.Step, 0, len(f.Steps))
	for i, def := range f.Steps {
		if def.ID != i+1 {
			return nil, fmt.Errorf("%w: step at position %d has id %d, expected %d", ErrInvalidCatalog, i+1, def.ID, i+1)
		}
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: step %d has no name", ErrInvalidCatalog, def.ID)
		}
		steps = append(steps, models.Step{
			ID:          def.ID,
			Name:        name,
			Description: strings.TrimSpace(def.Description),
			Guidance:    strings.TrimSpace(def.Guidance),
			Question:    strings.TrimSpace(def.Question),
			Categories:  append([]string(nil), def.Categories...),
		})
	}
	return steps, nil
}
