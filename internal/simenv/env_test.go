package simenv

import (
	"math"
	"testing"

	"github.com/aristath/hedger/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T, mutate func(*Config)) *Env {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NSteps = 10 // keep episodes short unless a test needs the full horizon
	if mutate != nil {
		mutate(&cfg)
	}
	env, err := New(cfg)
	require.NoError(t, err)
	return env
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sigma", func(c *Config) { c.Sigma = 0 }},
		{"negative T", func(c *Config) { c.T = -1 }},
		{"zero steps", func(c *Config) { c.NSteps = 0 }},
		{"bad option type", func(c *Config) { c.OptionType = "binary" }},
		{"bad action mode", func(c *Config) { c.ActionMode = "analog" }},
		{"negative cost", func(c *Config) { c.TransactionCost = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestStepBeforeReset(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.Step([]float64{0.5})
	assert.ErrorIs(t, err, ErrNotReset)
}

func TestResetState(t *testing.T) {
	env := newTestEnv(t, nil)
	obs, info := env.Reset(42)

	require.Len(t, obs, ObservationSize)
	assert.Equal(t, 1.0, obs[0], "S/K starts at 1 for an ATM contract")
	assert.Equal(t, 1.0, obs[1], "normalized strike placeholder")
	assert.Equal(t, env.InitialPremium(), info.Cash, "premium credited to cash")
	assert.Equal(t, 0.0, info.Position, "no automatic initial hedge")
	assert.Equal(t, 0, info.Step)
}

func TestEpisodeLengthInvariant(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(1)

	for i := 0; i < 10; i++ {
		res, err := env.Step([]float64{0.5})
		require.NoError(t, err)
		assert.False(t, res.Truncated, "truncated is never set")
		if i < 9 {
			assert.False(t, res.Terminated, "step %d", i)
			assert.Nil(t, res.Info.FinalPnL)
		} else {
			assert.True(t, res.Terminated, "last step terminates")
			require.NotNil(t, res.Info.FinalPnL)
			assert.Equal(t, res.Info.PnL, *res.Info.FinalPnL)
		}
	}

	_, err := env.Step([]float64{0.5})
	assert.ErrorIs(t, err, ErrTerminated)
}

func TestActionClipping(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(3)

	res, err := env.Step([]float64{10.0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Info.Position, "action clamped to the upper bound")

	res, err = env.Step([]float64{-10.0})
	require.NoError(t, err)
	assert.Equal(t, -2.0, res.Info.Position, "action clamped to the lower bound")
}

func TestInvalidActions(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(3)

	_, err := env.Step(nil)
	assert.Error(t, err)
	_, err = env.Step([]float64{0.5, 0.5})
	assert.Error(t, err)
}

func TestDiscreteActions(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.ActionMode = ActionDiscrete })
	env.Reset(5)

	// Index 4 is the +0.5 adjustment from a flat start.
	res, err := env.Step([]float64{4})
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.Info.Position)

	// Index 0 is the -0.5 adjustment.
	res, err = env.Step([]float64{0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Info.Position)

	_, err = env.Step([]float64{5})
	assert.Error(t, err, "index out of range")
	_, err = env.Step([]float64{1.5})
	assert.Error(t, err, "non-integral index")
}

func TestReproducibility(t *testing.T) {
	run := func() ([]Observation, []float64) {
		env := newTestEnv(t, nil)
		env.Reset(1234)

		var observations []Observation
		var rewards []float64
		actions := []float64{0.3, 0.5, 0.6, 0.4, 0.7, 0.5, 0.2, 0.6, 0.5, 0.0}
		for _, a := range actions {
			res, err := env.Step([]float64{a})
			require.NoError(t, err)
			observations = append(observations, res.Observation)
			rewards = append(rewards, res.Reward)
		}
		return observations, rewards
	}

	obsA, rewA := run()
	obsB, rewB := run()

	assert.Equal(t, obsA, obsB, "identical seeds and actions replay identical observations")
	assert.Equal(t, rewA, rewB, "identical seeds and actions replay identical rewards")
}

func TestDistinctSeedsDiverge(t *testing.T) {
	envA := newTestEnv(t, nil)
	envB := newTestEnv(t, nil)
	envA.Reset(1)
	envB.Reset(2)

	resA, err := envA.Step([]float64{0.5})
	require.NoError(t, err)
	resB, err := envB.Step([]float64{0.5})
	require.NoError(t, err)

	assert.NotEqual(t, resA.Info.S, resB.Info.S)
}

func TestTransactionCostsMonotone(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(9)

	prev := 0.0
	actions := []float64{0.5, -0.5, 1.0, 1.0, 0.0}
	for _, a := range actions {
		_, err := env.Step([]float64{a})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, env.TotalCosts(), prev)
		prev = env.TotalCosts()
	}
}

func TestRewardPenalizesTrackingError(t *testing.T) {
	// Two environments on the same path: one tracks delta, one stays flat.
	// The tracker collects a smaller per-step penalty.
	envTrack := newTestEnv(t, func(c *Config) { c.TransactionCost = 0 })
	envFlat := newTestEnv(t, func(c *Config) { c.TransactionCost = 0 })
	obs, _ := envTrack.Reset(21)
	envFlat.Reset(21)

	var trackReward, flatReward float64
	for i := 0; i < 9; i++ {
		delta := obs[6]
		resT, err := envTrack.Step([]float64{delta})
		require.NoError(t, err)
		obs = resT.Observation
		trackReward += resT.Reward

		resF, err := envFlat.Step([]float64{0})
		require.NoError(t, err)
		flatReward += resF.Reward
	}

	assert.Greater(t, trackReward, flatReward)
}

func TestObservationLayout(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(7)

	res, err := env.Step([]float64{0.4})
	require.NoError(t, err)
	obs := res.Observation
	require.Len(t, obs, ObservationSize)

	info := res.Info
	assert.Equal(t, info.S/100.0, obs[0])
	assert.Equal(t, 1.0, obs[1])
	assert.Equal(t, info.Tau, obs[2])
	assert.Equal(t, 0.2, obs[3])
	assert.Equal(t, 0.05, obs[4])
	assert.Equal(t, 0.4, obs[5])

	g := pricing.ComputeGreeks(info.S, 100, info.Tau, 0.05, 0.2, pricing.Call)
	assert.Equal(t, g.Delta, obs[6])
	assert.Equal(t, g.Gamma, obs[7])
	assert.Equal(t, g.Vega/100, obs[8])
	assert.Equal(t, info.PnL/100.0, obs[9])
	assert.Equal(t, 9.0, obs[10], "steps remaining")
}

func TestEpisodeMetrics(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(11)

	assert.Empty(t, env.EpisodeMetrics(), "no metrics before the first step")

	for i := 0; i < 10; i++ {
		_, err := env.Step([]float64{0.5})
		require.NoError(t, err)
	}

	m := env.EpisodeMetrics()
	require.Contains(t, m, "sharpe_ratio")
	assert.Equal(t, m["total_pnl"], m["final_pnl"])
	assert.InDelta(t, m["total_pnl"]-m["total_costs"], m["net_pnl"], 1e-12)
	assert.GreaterOrEqual(t, m["total_costs"], 0.0)
	assert.False(t, math.IsNaN(m["sharpe_ratio"]))
	assert.InDelta(t, 5.0/11.0, m["avg_position"], 1e-12,
		"average includes the flat position the episode starts from")
}

func TestResetAfterTermination(t *testing.T) {
	env := newTestEnv(t, nil)
	env.Reset(13)
	for i := 0; i < 10; i++ {
		_, err := env.Step([]float64{0.5})
		require.NoError(t, err)
	}

	obs, info := env.Reset(14)
	require.Len(t, obs, ObservationSize)
	assert.Equal(t, 0, info.Step)
	assert.Equal(t, 0.0, info.Position)
	assert.Equal(t, 0.0, info.TotalCosts)

	_, err := env.Step([]float64{0.5})
	assert.NoError(t, err)
}
