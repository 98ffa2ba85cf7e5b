package matching

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
)

// Model is a small feed-forward network (dense 64 relu, dense 32 relu,
// dense 1 sigmoid over the pair feature vector) loaded from a JSON weights
// artifact. Once loaded it is immutable and safe for concurrent readers.
type Model struct {
	W1 [][]float64 `json:"w1"`
	B1 []float64   `json:"b1"`
	W2 [][]float64 `json:"w2"`
	B2 []float64   `json:"b2"`
	W3 [][]float64 `json:"w3"`
	B3 []float64   `json:"b3"`
}

// LoadModel reads and validates a weights artifact. It wraps every failure
// in ErrModelUnavailable so callers can treat all load problems uniformly.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) validate() error {
	if len(m.W1) == 0 || len(m.W1[0]) != featureCount {
		return fmt.Errorf("%w: layer 1 expects %d inputs", ErrModelUnavailable, featureCount)
	}
	if len(m.B1) != len(m.W1) {
		return fmt.Errorf("%w: layer 1 bias width mismatch", ErrModelUnavailable)
	}
	if len(m.W2) == 0 || len(m.W2[0]) != len(m.W1) || len(m.B2) != len(m.W2) {
		return fmt.Errorf("%w: layer 2 shape mismatch", ErrModelUnavailable)
	}
	if len(m.W3) != 1 || len(m.W3[0]) != len(m.W2) || len(m.B3) != 1 {
		return fmt.Errorf("%w: output layer shape mismatch", ErrModelUnavailable)
	}
	return nil
}

// Predict runs inference over one pair feature vector.
func (m *Model) Predict(features []float64) float64 {
	h1 := dense(m.W1, m.B1, features, relu)
	h2 := dense(m.W2, m.B2, h1, relu)
	out := dense(m.W3, m.B3, h2, sigmoid)
	return out[0]
}

func dense(weights [][]float64, bias []float64, in []float64, activation func(float64) float64) []float64 {
	out := make([]float64, len(weights))
	for i, row := range weights {
		sum := bias[i]
		for j, w := range row {
			sum += w * in[j]
		}
		out[i] = activation(sum)
	}
	return out
}

func relu(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Process-wide model singleton: initialized at most once, read-only after.
var (
	sharedModelOnce sync.Once
	sharedModel     *Model
	sharedModelErr  error
)

// SharedModel lazily loads the process-wide model from path. Every caller
// after the first gets the same instance (or the same load error).
func SharedModel(path string) (*Model, error) {
	sharedModelOnce.Do(func() {
		sharedModel, sharedModelErr = LoadModel(path)
	})
	return sharedModel, sharedModelErr
}

// Learned scores pairs with the predictive model and fails closed to the
// heuristic whenever the model is absent: a degraded score beats blocking
// recommendations entirely.
type Learned struct {
	model    *Model
	fallback Heuristic
}

// NewLearned builds a learned strategy from the process-wide model at path.
// A load failure is logged once and leaves the strategy in permanent
// heuristic fallback.
func NewLearned(path string) *Learned {
	model, err := SharedModel(path)
	if err != nil {
		log.Println("matching: learned model unavailable, using heuristic fallback:", err)
	}
	return &Learned{model: model}
}

// NewLearnedFromModel builds a learned strategy around an already-loaded
// model. A nil model means permanent heuristic fallback.
func NewLearnedFromModel(model *Model) *Learned {
	return &Learned{model: model}
}

func (l *Learned) Score(viewer, candidate *Profile, prefs *Preferences) (float64, error) {
	if viewer == nil || candidate == nil || prefs == nil {
		return 0, ErrInvalidInput
	}
	if l.model == nil {
		return l.fallback.Score(viewer, candidate, prefs)
	}
	return clamp01(l.model.Predict(pairFeatures(viewer, candidate, prefs))), nil
}
