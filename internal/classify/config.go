package classify

import (
	"errors"
	"fmt"
)

// Class associates a display label with the filename prefix of its training
// images.
type Class struct {
	Label  string `mapstructure:"label"`
	Prefix string `mapstructure:"prefix"`
}

// Config describes the training set layout. The class list is ordered: the
// centroid table iterates classes in this order, which also fixes the
// classifier's tie-break behavior.
type Config struct {
	BaseDir        string
	Classes        []Class
	ImagesPerClass int
	Extension      string
}

// DefaultClasses are the doneness categories the tool ships with.
func DefaultClasses() []Class {
	return []Class{
		{Label: "Ovo Mole", Prefix: "ovo-mole"},
		{Label: "Ovo ao Ponto", Prefix: "ovo-ponto"},
		{Label: "Ovo Passado", Prefix: "ovo-passado"},
	}
}

// Validate reports the first problem that would make training meaningless.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New("no training directory configured")
	}

	if len(c.Classes) == 0 {
		return errors.New("no classes configured")
	}

	if c.ImagesPerClass < 1 {
		return fmt.Errorf("images-per-class must be positive, got %d", c.ImagesPerClass)
	}

	seen := map[string]bool{}
	for _, class := range c.Classes {
		if class.Label == "" || class.Prefix == "" {
			return fmt.Errorf("class %+v is missing a label or prefix", class)
		}

		if seen[class.Label] {
			return fmt.Errorf("class %q is configured twice", class.Label)
		}

		seen[class.Label] = true
	}

	return nil
}
