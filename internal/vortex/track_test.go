package vortex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metresPerDegree is one degree of arc on orb's spherical earth.
const metresPerDegree = 111319.49079327357

func TestTrack_Validate(t *testing.T) {
	require.NoError(t, trackOf(Center{120, 20}, Center{350, -10}).Validate())

	cases := []struct {
		name  string
		track Track
	}{
		{"empty", Track{}},
		{"latitude beyond pole", trackOf(Center{120, 95})},
		{"non-finite longitude", Track{{Lon: inf(), Lat: 10}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.track.Validate(), ErrInvalidTrack)
		})
	}
}

func TestTrack_TranslationVelocity(t *testing.T) {
	t.Run("eastward along the equator", func(t *testing.T) {
		vel, err := trackOf(Center{0, 0}, Center{1, 0}, Center{2, 0}).TranslationVelocity()
		require.NoError(t, err)
		require.Len(t, vel, 3)
		want := metresPerDegree / (6 * 3600)
		for i, v := range vel {
			assert.InDelta(t, want, v.U, 1e-3, "point %d", i)
			assert.InDelta(t, 0.0, v.V, 1e-6, "point %d", i)
		}
	})

	t.Run("northward", func(t *testing.T) {
		vel, err := trackOf(Center{130, 10}, Center{130, 10.5}).TranslationVelocity()
		require.NoError(t, err)
		for _, v := range vel {
			assert.InDelta(t, 0.0, v.U, 1e-6)
			assert.InDelta(t, metresPerDegree/2/(6*3600), v.V, 1e-3)
		}
	})

	t.Run("single fix is stationary", func(t *testing.T) {
		vel, err := trackOf(Center{130, 10}).TranslationVelocity()
		require.NoError(t, err)
		assert.Equal(t, []Velocity{{}}, vel)
	})

	t.Run("repeated time", func(t *testing.T) {
		tr := trackOf(Center{130, 10}, Center{131, 10})
		tr[1].Time = tr[0].Time
		_, err := tr.TranslationVelocity()
		assert.ErrorIs(t, err, ErrTrackOrder)
	})
}

func TestTrack_WithTranslationVelocityKeepsSupplied(t *testing.T) {
	tr := trackOf(Center{0, 0}, Center{1, 0})
	tr[0].Velocity = &Velocity{U: -1, V: -1}

	filled, err := tr.WithTranslationVelocity()
	require.NoError(t, err)
	assert.Nil(t, tr[1].Velocity, "input track must not be modified")

	vel, err := filled.Velocities()
	require.NoError(t, err)
	assert.Equal(t, Velocity{U: -1, V: -1}, vel[0])
	assert.InDelta(t, metresPerDegree/(6*3600), vel[1].U, 1e-3)
}

func TestTrack_WithTranslationVelocityAllSupplied(t *testing.T) {
	tr := trackOf(Center{130, 10}, Center{131, 10})
	tr[1].Time = tr[0].Time
	tr[0].Velocity = &Velocity{U: 5, V: 1}
	tr[1].Velocity = &Velocity{U: 6, V: 2}

	filled, err := tr.WithTranslationVelocity()
	require.NoError(t, err)
	vel, err := filled.Velocities()
	require.NoError(t, err)
	assert.Equal(t, []Velocity{{U: 5, V: 1}, {U: 6, V: 2}}, vel)

	tr[0].Velocity = nil
	_, err = tr.WithTranslationVelocity()
	assert.ErrorIs(t, err, ErrTrackOrder)
}

func TestTrack_Velocities(t *testing.T) {
	_, err := trackOf(Center{0, 0}).Velocities()
	assert.ErrorIs(t, err, ErrMissingVelocity)
}

func TestTrack_VelocityFields(t *testing.T) {
	tr := trackOf(Center{0, 0}, Center{1, 0})
	tr[0].Velocity = &Velocity{U: 1, V: 2}
	tr[1].Velocity = &Velocity{U: 3, V: 4}

	uc, vc, err := tr.VelocityFields("time")
	require.NoError(t, err)
	assert.Equal(t, []string{"time"}, uc.Dims)
	assert.Equal(t, []float64{1, 3}, uc.Values)
	assert.Equal(t, []float64{2, 4}, vc.Values)
	assert.Equal(t, []float64{
		float64(baseTime.Unix()),
		float64(baseTime.Add(6 * time.Hour).Unix()),
	}, uc.Coords["time"])

	single := tr[:1]
	uc, _, err = single.VelocityFields("time")
	require.NoError(t, err)
	assert.Empty(t, uc.Dims)
	assert.Equal(t, []float64{1}, uc.Values)
}
