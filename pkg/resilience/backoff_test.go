package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_NextDelay(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0, // deterministic for the test
	}

	assert.Equal(t, 1*time.Second, eb.NextDelay(0))
	assert.Equal(t, 2*time.Second, eb.NextDelay(1))
	assert.Equal(t, 4*time.Second, eb.NextDelay(2))
	assert.Equal(t, 8*time.Second, eb.NextDelay(3))
}

func TestExponentialBackoff_CapsAtMaxDelay(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     0,
	}

	assert.Equal(t, 10*time.Second, eb.NextDelay(20))
}

func TestExponentialBackoff_NegativeAttempt(t *testing.T) {
	eb := MailBackoff()
	assert.Equal(t, eb.BaseDelay, eb.NextDelay(-1))
}

func TestExponentialBackoff_JitterStaysInBounds(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.1,
	}

	for i := 0; i < 100; i++ {
		d := eb.NextDelay(1)
		assert.GreaterOrEqual(t, d, 1800*time.Millisecond)
		assert.LessOrEqual(t, d, 2200*time.Millisecond)
	}
}

func TestFixedBackoff(t *testing.T) {
	fb := &FixedBackoff{Delay: 5 * time.Second}
	assert.Equal(t, 5*time.Second, fb.NextDelay(0))
	assert.Equal(t, 5*time.Second, fb.NextDelay(9))
}
