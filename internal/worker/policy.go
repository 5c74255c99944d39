package worker

import "time"

// ReconnectPolicy controls how the ingestor re-dials the feed. The zero
// multiplier/delay fall back to the feed's classic behavior: a flat one
// second between attempts, forever.
type ReconnectPolicy struct {
	Delay      time.Duration
	MaxDelay   time.Duration
	Multiplier float64

	// MaxAttempts caps consecutive failed connects; 0 retries indefinitely.
	// The counter resets on every successful connect.
	MaxAttempts int
}

func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		Delay:       time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  1.0,
		MaxAttempts: 0,
	}
}

// Backoff returns the wait before the given attempt (1-based).
func (p ReconnectPolicy) Backoff(attempt int) time.Duration {
	delay := p.Delay
	if delay <= 0 {
		delay = time.Second
	}

	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * multiplier)

		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	return delay
}

func (p ReconnectPolicy) Exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}
