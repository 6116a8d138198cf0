package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kestrelapps/taskdeck-api/models"
)

func TestDeviceToken_IsStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	tests := []struct {
		name       string
		lastUsedAt time.Time
		want       bool
	}{
		{"used yesterday", now.Add(-24 * time.Hour), false},
		{"used exactly at the cutoff", now.Add(-window), false},
		{"one millisecond past the cutoff", now.Add(-window - time.Millisecond), true},
		{"months old", now.Add(-90 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := models.DeviceToken{LastUsedAt: primitive.NewDateTimeFromTime(tt.lastUsedAt)}
			assert.Equal(t, tt.want, d.IsStale(now, window))
		})
	}
}

func TestValidPlatform(t *testing.T) {
	assert.True(t, models.ValidPlatform("ios"))
	assert.True(t, models.ValidPlatform("android"))
	assert.True(t, models.ValidPlatform("web"))
	assert.False(t, models.ValidPlatform("windows"))
	assert.False(t, models.ValidPlatform(""))
	assert.False(t, models.ValidPlatform("iOS"))
}
