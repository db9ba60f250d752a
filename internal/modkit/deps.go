// Package modkit provides module wiring and core deps
package modkit

import (
	"carcrawl/internal/modkit/repokit"
	"carcrawl/internal/platform/config"
	"carcrawl/internal/platform/logger"
)

// Deps holds core dependencies passed to modules.
// PG is nil unless the postgres partition store is selected
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// HasPG reports whether a postgres seam was wired
func (d Deps) HasPG() bool { return d.PG != nil }
