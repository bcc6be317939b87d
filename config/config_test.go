package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults()
	require.NoError(t, err)
	require.Equal(t, 100, d.NSim)
	require.Equal(t, 7, d.NDays)
	require.Equal(t, "poisson", d.Model)
	require.InDelta(t, 0.03, d.Size, 1e-12)
	require.Equal(t, "notice", d.LogLevel)
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("EPIPROJ_NSIM", "250")
	t.Setenv("EPIPROJ_MODEL", "negbin")
	d, err := LoadDefaults()
	require.NoError(t, err)
	require.Equal(t, 250, d.NSim)
	require.Equal(t, "negbin", d.Model)
}

func TestLoadDefaultsInvalid(t *testing.T) {
	t.Setenv("EPIPROJ_NDAYS", "0")
	_, err := LoadDefaults()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConfiguration))

	t.Setenv("EPIPROJ_NDAYS", "seven")
	_, err = LoadDefaults()
	require.Error(t, err)
}

func TestErrorIs(t *testing.T) {
	err := Errorf("n_sim", "must be positive, got %d", 0)
	require.True(t, errors.Is(err, ErrConfiguration))
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "n_sim", cerr.Param)
	require.Equal(t, "n_sim: must be positive, got 0", err.Error())
}
