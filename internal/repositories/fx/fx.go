package fx

import (
	"github.com/orgball2608/story-explorer/internal/repositories/favorite"
	"github.com/orgball2608/story-explorer/internal/repositories/pending"
	"github.com/orgball2608/story-explorer/internal/repositories/responsecache"
	"github.com/orgball2608/story-explorer/internal/repositories/storycache"
	"go.uber.org/fx"
)

// Module provides the local store collections.
var Module = fx.Options(
	fx.Provide(
		favorite.New,
		pending.New,
		storycache.New,
	),
)

// ResponseModule provides the interceptor's response store.
var ResponseModule = fx.Provide(
	fx.Annotate(
		responsecache.NewSQL,
		fx.As(new(responsecache.Repository)),
	),
)
