package explorerimpl

import (
	"github.com/orgball2608/story-explorer/internal/explorer"
	"go.uber.org/fx"
)

var Module = fx.Provide(
	fx.Annotate(
		New,
		fx.As(new(explorer.Service)),
	),
)
