package syncerimpl

import (
	"github.com/orgball2608/story-explorer/internal/syncer"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(syncer.Client)),
	),
)
