package sim

import (
	"fmt"
	"math"
	"sync"
)

const (
	DefaultAlpha       = 1.0
	DefaultAlphaMin    = 0.001
	DefaultAlphaTarget = 0.0
	DefaultIterations  = 300
)

// DefaultAlphaDecay takes alpha from 1 to DefaultAlphaMin in
// DefaultIterations steps.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/DefaultIterations)

// CoolingStepper is the alpha schedule. Each Step moves alpha a fixed
// fraction of the way toward the target. When alpha falls to the minimum
// and the target is at or below it, alpha snaps to zero and the stepper
// settles; raising the alpha or the target wakes it.
type CoolingStepper struct {
	mu      sync.Mutex
	alpha   float64
	min     float64
	decay   float64
	target  float64
	settled bool
}

// NewCooling returns the default 300-step schedule.
func NewCooling() *CoolingStepper {
	return &CoolingStepper{
		alpha:  DefaultAlpha,
		min:    DefaultAlphaMin,
		decay:  DefaultAlphaDecay,
		target: DefaultAlphaTarget,
	}
}

// NewCoolingWith builds a stepper from explicit parameters.
func NewCoolingWith(alpha, min, decay, target float64) (*CoolingStepper, error) {
	c := NewCooling()
	for _, set := range []func() error{
		func() error { return c.SetAlpha(alpha) },
		func() error { return c.SetMin(min) },
		func() error { return c.SetDecay(decay) },
		func() error { return c.SetTarget(target) },
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DecayForIterations returns the decay that takes alpha from 1 to min in n
// steps.
func DecayForIterations(min float64, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: iterations = %d", ErrInvalidCooling, n)
	}
	if !(min > 0 && min < 1) {
		return 0, fmt.Errorf("%w: alpha min = %v", ErrInvalidCooling, min)
	}
	return 1 - math.Pow(min, 1/float64(n)), nil
}

// Step returns the alpha for the current tick and advances the schedule.
func (c *CoolingStepper) Step() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.settled {
		if c.target <= c.min {
			return 0
		}
		c.settled = false
	}

	a := c.alpha
	c.alpha += (c.target - c.alpha) * c.decay
	if c.alpha <= c.min && c.target <= c.min {
		c.alpha = 0
		c.settled = true
	}
	return a
}

func (c *CoolingStepper) Alpha() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alpha
}

// SetAlpha reheats (or chills) the schedule.
func (c *CoolingStepper) SetAlpha(a float64) error {
	if err := checkUnit("alpha", a, false); err != nil {
		return err
	}
	c.mu.Lock()
	c.alpha = a
	c.settled = false
	c.mu.Unlock()
	return nil
}

func (c *CoolingStepper) Min() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.min
}

func (c *CoolingStepper) SetMin(m float64) error {
	if err := checkUnit("alpha min", m, true); err != nil {
		return err
	}
	c.mu.Lock()
	c.min = m
	if c.target > m {
		c.settled = false
	}
	c.mu.Unlock()
	return nil
}

func (c *CoolingStepper) Decay() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decay
}

func (c *CoolingStepper) SetDecay(d float64) error {
	if err := checkUnit("alpha decay", d, true); err != nil {
		return err
	}
	c.mu.Lock()
	c.decay = d
	c.mu.Unlock()
	return nil
}

func (c *CoolingStepper) Target() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// SetTarget moves the value alpha decays toward. A target above the minimum
// keeps the layout warm, e.g. while a node is being dragged.
func (c *CoolingStepper) SetTarget(t float64) error {
	if err := checkUnit("alpha target", t, true); err != nil {
		return err
	}
	c.mu.Lock()
	c.target = t
	if t > c.min {
		c.settled = false
	}
	c.mu.Unlock()
	return nil
}

func (c *CoolingStepper) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// checkUnit rejects NaN and negative values, and values above 1 when
// bounded.
func checkUnit(name string, v float64, bounded bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (bounded && v > 1) {
		return fmt.Errorf("%w: %s = %v", ErrInvalidCooling, name, v)
	}
	return nil
}
