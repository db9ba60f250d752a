package modkit

import "carcrawl/internal/modkit/module"

// Module is the surface every service module exposes to cmd wiring
type Module = module.Module

// Builder constructs a Module from shared deps
type Builder func(Deps) (Module, error)
