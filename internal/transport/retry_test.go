package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 1*time.Second, p.BaseDelay)
	assert.Equal(t, 30*time.Second, p.MaxDelay)
	assert.True(t, p.RetryServerErrors)
	require.NoError(t, p.Validate())
}

func TestRetryPolicy_Validate(t *testing.T) {
	p := DefaultRetryPolicy()
	p.MaxAttempts = 0
	assert.Error(t, p.Validate())

	p = DefaultRetryPolicy()
	p.MaxDelay = 500 * time.Millisecond
	assert.Error(t, p.Validate())
}

func TestIsRetryableStatus(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.True(t, p.IsRetryableStatus(429))
	assert.True(t, p.IsRetryableStatus(500))
	assert.True(t, p.IsRetryableStatus(503))
	assert.True(t, p.IsRetryableStatus(599))

	assert.False(t, p.IsRetryableStatus(200))
	assert.False(t, p.IsRetryableStatus(400))
	assert.False(t, p.IsRetryableStatus(401))
	assert.False(t, p.IsRetryableStatus(404))
}

func TestIsRetryableStatus_ServerErrorsDisabled(t *testing.T) {
	p := DefaultRetryPolicy()
	p.RetryServerErrors = false

	assert.True(t, p.IsRetryableStatus(429))
	assert.False(t, p.IsRetryableStatus(500))
}

func TestBackoff_ExponentialGrowth(t *testing.T) {
	p := DefaultRetryPolicy()
	p.JitterMax = 0

	assert.Equal(t, 1*time.Second, p.backoff(1, 0))
	assert.Equal(t, 2*time.Second, p.backoff(2, 0))
	assert.Equal(t, 4*time.Second, p.backoff(3, 0))
	assert.Equal(t, 8*time.Second, p.backoff(4, 0))
}

func TestBackoff_CappedAtMaxDelay(t *testing.T) {
	p := DefaultRetryPolicy()
	p.JitterMax = 0

	assert.Equal(t, 30*time.Second, p.backoff(10, 0))
}

func TestBackoff_RetryAfterOverrides(t *testing.T) {
	p := DefaultRetryPolicy()
	p.JitterMax = 0

	// Retry-After wins over the computed delay.
	assert.Equal(t, 5*time.Second, p.backoff(1, 5*time.Second))

	// But it is still capped at MaxDelay.
	assert.Equal(t, 30*time.Second, p.backoff(1, 2*time.Minute))
}

func TestBackoff_JitterBounds(t *testing.T) {
	p := DefaultRetryPolicy()

	for i := 0; i < 50; i++ {
		delay := p.backoff(1, 0)
		assert.GreaterOrEqual(t, delay, 1*time.Second)
		assert.LessOrEqual(t, delay, 1*time.Second+p.JitterMax)
	}
}

func TestParseRetryAfter_Seconds(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseRetryAfter("2"))
	assert.Equal(t, 120*time.Second, parseRetryAfter("120"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("0"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-5"))
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	delay := parseRetryAfter(future)
	assert.Greater(t, delay, 8*time.Second)
	assert.LessOrEqual(t, delay, 10*time.Second)

	past := time.Now().Add(-10 * time.Second).UTC().Format(http.TimeFormat)
	assert.Equal(t, time.Duration(0), parseRetryAfter(past))
}

func TestParseRetryAfter_Malformed(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("2.5"))
}
