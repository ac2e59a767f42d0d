package validation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/ragate/internal/domain"
	"github.com/kailas-cloud/ragate/internal/metrics"
)

func newValidator() (*Validator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestValidate_Blank(t *testing.T) {
	v, _ := newValidator()
	for _, in := range []string{"", "  \n\t"} {
		_, err := v.Validate(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	}
}

func TestValidate_DontKnowReplaced(t *testing.T) {
	v, _ := newValidator()
	inputs := []string{
		"I don't know.",
		"Honestly I DON'T KNOW what the quota was on 2024-01-01 exactly 5",
		"I cannot find that in the data",
		"I don't have data for that region.",
	}
	for _, in := range inputs {
		out, err := v.Validate(context.Background(), in)
		require.NoError(t, err, in)
		assert.Equal(t, FallbackResponse, out)
	}
}

func TestValidate_Hallucination(t *testing.T) {
	v, logs := newValidator()

	_, err := v.Validate(context.Background(), "The team sold exactly 5 units.")
	assert.ErrorIs(t, err, domain.ErrHallucinationSuspected)
	assert.Equal(t, 1, logs.FilterMessage("potential hallucination detected").Len())

	out, err := v.Validate(context.Background(), "According to the report, the team sold exactly 5 units.")
	require.NoError(t, err)
	assert.Contains(t, out, "exactly 5 units")
}

func TestValidate_HallucinationPatterns(t *testing.T) {
	v, _ := newValidator()
	claims := []string{
		"The call happened at 10:30 am.",
		"The deal closed at 9:05PM.",
		"Revenue was booked on 2024-03-15.",
		"Commission was precisely 1200 dollars.",
	}
	for _, c := range claims {
		_, err := v.Validate(context.Background(), c)
		assert.ErrorIs(t, err, domain.ErrHallucinationSuspected, c)

		_, err = v.Validate(context.Background(), "Based on the data: "+c)
		assert.NoError(t, err, c)
	}
}

func TestValidate_AttributionAnywhere(t *testing.T) {
	v, _ := newValidator()
	in := "Exactly 7 agents hit quota. " + strings.Repeat("Pipeline grew. ", 20) + "Source: Q3 review."
	_, err := v.Validate(context.Background(), in)
	assert.NoError(t, err)
}

func TestValidate_MissingCommercialTermsWarnsOnly(t *testing.T) {
	v, logs := newValidator()
	before := testutil.ToFloat64(metrics.ValidationWarningsTotal.WithLabelValues("missing_commercial_terms"))

	in := strings.Repeat("The weather was pleasant all week long. ", 4)
	out, err := v.Validate(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 1, logs.FilterMessage("response may not be commercially relevant").Len())
	after := testutil.ToFloat64(metrics.ValidationWarningsTotal.WithLabelValues("missing_commercial_terms"))
	assert.InDelta(t, 1, after-before, 1e-9)
}

func TestValidate_ShortAnswerNoVocabularyWarning(t *testing.T) {
	v, logs := newValidator()
	_, err := v.Validate(context.Background(), "Nice weather.")
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestValidate_PassThrough(t *testing.T) {
	v, _ := newValidator()
	in := "Sales increased 12% quarter over quarter, driven by the enterprise pipeline."
	out, err := v.Validate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsFresh("2024-06-02T00:00:00Z", now, DefaultFreshnessMaxAge))
	assert.True(t, IsFresh("2024-06-02T10:00:00+02:00", now, DefaultFreshnessMaxAge))
	assert.True(t, IsFresh("2024-06-02T11:00:00", now, DefaultFreshnessMaxAge))
	assert.True(t, IsFresh("2024-06-02", now, DefaultFreshnessMaxAge))
	assert.False(t, IsFresh("2024-06-01T12:00:00Z", now, DefaultFreshnessMaxAge))
	assert.False(t, IsFresh("2024-05-01", now, DefaultFreshnessMaxAge))
	assert.False(t, IsFresh("", now, DefaultFreshnessMaxAge))
	assert.False(t, IsFresh("yesterday", now, DefaultFreshnessMaxAge))
	assert.True(t, IsFresh("2024-05-01", now, 60*24*time.Hour))
}
