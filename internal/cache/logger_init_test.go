package cache

import (
	"go.uber.org/zap"

	"github.com/prism-worklet/prism-api/pkg/logger"
)

// The global logger is only initialized by the binaries' main functions;
// give tests a no-op logger so logging code paths don't panic.
func init() {
	logger.Log = zap.NewNop()
}
