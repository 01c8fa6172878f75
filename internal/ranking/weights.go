package ranking

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights scale each ranking signal. A zero weight disables the signal.
type Weights struct {
	View      float64 `yaml:"view"`
	Category  float64 `yaml:"category"`
	Search    float64 `yaml:"search"`
	Proximity float64 `yaml:"proximity"`

	// ProximityScaleKm is the distance at which the proximity term halves.
	ProximityScaleKm float64 `yaml:"proximity_scale_km"`
	// WishlistBoost is how many views one wishlist add is worth in category affinity.
	WishlistBoost float64 `yaml:"wishlist_boost"`
}

func DefaultWeights() Weights {
	return Weights{
		View:             1.0,
		Category:         0.8,
		Search:           1.2,
		Proximity:        0.6,
		ProximityScaleKm: 10,
		WishlistBoost:    3,
	}
}

// LoadWeights reads a YAML weights file on top of DefaultWeights.
// An empty path or a missing file yields the defaults.
//
// Example file:
//
//	view: 1.0
//	search: 2.0
//	proximity_scale_km: 25
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return w, fmt.Errorf("read weights %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return DefaultWeights(), fmt.Errorf("parse weights %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), fmt.Errorf("weights %s: %w", path, err)
	}
	return w, nil
}

// orDefaults fills in what NewRanker cannot run with: the zero value becomes
// DefaultWeights, negative weights become 0 and a non-positive proximity
// scale takes the default scale.
func (w Weights) orDefaults() Weights {
	if w == (Weights{}) {
		return DefaultWeights()
	}
	for _, v := range []*float64{&w.View, &w.Category, &w.Search, &w.Proximity, &w.WishlistBoost} {
		if *v < 0 {
			*v = 0
		}
	}
	if w.ProximityScaleKm <= 0 {
		w.ProximityScaleKm = DefaultWeights().ProximityScaleKm
	}
	return w
}

// Validate rejects negative weights and a non-positive proximity scale.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"view":           w.View,
		"category":       w.Category,
		"search":         w.Search,
		"proximity":      w.Proximity,
		"wishlist_boost": w.WishlistBoost,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if w.ProximityScaleKm <= 0 {
		return errors.New("proximity_scale_km must be positive")
	}
	return nil
}
