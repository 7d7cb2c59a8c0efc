package session

import (
	"math"
	"math/rand"
	"time"
)

// Delay returns the wait before connect attempt N+1 after attempt N failed
// (attempt is 1-based). A nil rng applies the midpoint of the jitter range.
func (b BackoffConfig) Delay(attempt int, rng *rand.Rand) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	mult := b.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(b.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	if b.Jitter && rng != nil {
		delay *= 0.5 + rng.Float64()
	}
	return time.Duration(delay)
}
