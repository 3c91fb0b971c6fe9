// Package autoload configures the global logger from the LOG_*
// environment on import. Blank-import it from main.
package autoload

import (
	configx "github.com/shopco/support-agent/pkg/config"
	logx "github.com/shopco/support-agent/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
