package util_test

import (
	"net/url"
	"testing"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, util.RoundFloat(1.2345, 2))
	assert.Equal(t, -2.0, util.RoundFloat(-1.5, 0))

	v := util.RoundNullable(3.14159, 3)
	require.NotNil(t, v)
	assert.Equal(t, 3.142, *v)
}

func TestFloatParam(t *testing.T) {
	q := url.Values{"radius": {"2.5"}, "bad": {"x"}, "inf": {"+Inf"}}

	v, err := util.FloatParam(q, "radius", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = util.FloatParam(q, "step", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = util.FloatParam(q, "bad", 1)
	assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
	_, err = util.FloatParam(q, "inf", 1)
	assert.True(t, domain.Is(err, domain.ErrInvalidArgument))
}
