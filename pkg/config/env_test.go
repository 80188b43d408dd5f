package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductionLike(t *testing.T) {
	assert.True(t, productionLike(EnvProduction))
	assert.True(t, productionLike(EnvStaging))
	assert.False(t, productionLike(EnvDevelopment))
	assert.False(t, productionLike("test"))
}
