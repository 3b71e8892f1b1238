package storyapiimpl

import (
	"github.com/orgball2608/story-explorer/internal/storyapi"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(storyapi.Client)),
	),
)
