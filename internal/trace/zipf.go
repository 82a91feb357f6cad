package trace

import "math/rand"

// Zipf generates a synthetic trace of n keys drawn from [0, keys) with a
// Zipf(s, v) popularity distribution. It has the same Next/Key/Err shape as
// Reader.
type Zipf struct {
	z    *rand.Zipf
	left uint64
	key  uint64
}

// NewZipf requires s > 1, v >= 1 and keys > 0; rand.NewZipf returns nil
// otherwise, and so does NewZipf.
func NewZipf(seed int64, s, v float64, keys, n uint64) *Zipf {
	if keys == 0 {
		return nil
	}
	z := rand.NewZipf(rand.New(rand.NewSource(seed)), s, v, keys-1)
	if z == nil {
		return nil
	}
	return &Zipf{z: z, left: n}
}

// Next draws the next key.
func (g *Zipf) Next() bool {
	if g.left == 0 {
		return false
	}
	g.left--
	g.key = g.z.Uint64()
	return true
}

// Key returns the last drawn key.
func (g *Zipf) Key() uint64 { return g.key }

// Err is always nil.
func (g *Zipf) Err() error { return nil }
