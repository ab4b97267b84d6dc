package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholdConfigValid(t *testing.T) {
	assert.True(t, ThresholdConfig{TargetPercentage: 60, Level1Threshold: 50, Level2Threshold: 70, Level3Threshold: 85}.Valid())

	// Equal adjacent thresholds make a level unreachable.
	assert.False(t, ThresholdConfig{TargetPercentage: 60, Level1Threshold: 70, Level2Threshold: 70, Level3Threshold: 85}.Valid())
	// Inverted ordering.
	assert.False(t, ThresholdConfig{TargetPercentage: 60, Level1Threshold: 85, Level2Threshold: 70, Level3Threshold: 50}.Valid())
	// Out of percentage range.
	assert.False(t, ThresholdConfig{TargetPercentage: 101, Level1Threshold: 50, Level2Threshold: 70, Level3Threshold: 85}.Valid())
	assert.False(t, ThresholdConfig{TargetPercentage: 60, Level1Threshold: -1, Level2Threshold: 70, Level3Threshold: 85}.Valid())
}

func TestMarkAttemptConstructors(t *testing.T) {
	attempted := Attempted("q-1", 7.5)
	assert.True(t, attempted.Attempted)
	assert.Equal(t, 7.5, attempted.Obtained)

	absent := NotAttempted("q-2")
	assert.False(t, absent.Attempted)
	assert.Equal(t, 0.0, absent.Obtained)
}
