package api

import (
	"github.com/JaimeStill/storybook/internal/config"
	"github.com/JaimeStill/storybook/internal/storybooks"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Storybooks storybooks.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	return &Domain{
		Storybooks: storybooks.New(
			runtime.Images,
			runtime.Storage,
			runtime.History,
			runtime.Reporter,
			cfg.Storybook,
			runtime.Pagination,
			runtime.Logger,
		),
	}
}
