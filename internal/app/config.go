package app

import (
	"github.com/fastorder/server/internal/shared/config"
)

// LoadConfig loads application configuration. An empty path searches the
// default locations.
func LoadConfig(path string) (*config.Config, error) {
	return config.LoadFrom(path)
}
