package game

import (
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/keys"
)

// stubAssets stands in for the render edge in headless mode: loads succeed
// without touching the GPU so scripts behave identically.
type stubAssets struct {
	log *zap.Logger
}

func (s stubAssets) LoadTexture(id keys.Key, path string) error {
	s.log.Debug("headless texture load", zap.String("id", id.String()), zap.String("path", path))
	return nil
}

func (s stubAssets) LoadFont(id keys.Key, path string, size float32) error {
	s.log.Debug("headless font load", zap.String("id", id.String()), zap.String("path", path))
	return nil
}

func (s stubAssets) LoadShader(id keys.Key, vsPath, fsPath string) error {
	s.log.Debug("headless shader load", zap.String("id", id.String()))
	return nil
}

// stubMeasurer approximates text metrics without a rasterized font, keeping
// signal-binding layout deterministic in headless runs.
type stubMeasurer struct{}

func (stubMeasurer) Measure(font keys.Key, content string, size float32) (w, h float32) {
	return float32(len(content)) * size * 0.5, size
}
