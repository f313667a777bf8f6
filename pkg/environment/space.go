package environment

import "math/rand/v2"

// Discrete is a finite action space over {0, ..., N-1}. It owns its own
// sampler so that scripted random rollouts are reproduced by the same
// Seed call that seeds the environment.
type Discrete struct {
	N   int
	rng *rand.Rand
}

// NewDiscrete returns an unseeded discrete space with n actions.
func NewDiscrete(n int) *Discrete {
	return &Discrete{N: n}
}

// Seed (re)initializes the sampler.
func (d *Discrete) Seed(seed uint64) {
	d.rng = rand.New(rand.NewPCG(seed, seed))
}

// Sample draws a uniform random action index.
func (d *Discrete) Sample() int {
	if d.rng == nil {
		d.Seed(0)
	}
	return d.rng.IntN(d.N)
}

// Contains reports whether action is a valid index in this space.
func (d *Discrete) Contains(action int) bool {
	return action >= 0 && action < d.N
}
