package explorerimpl

import (
	"github.com/orgball2608/story-explorer/internal/connectivity"
	"github.com/orgball2608/story-explorer/internal/explorer"
	"github.com/orgball2608/story-explorer/internal/repositories/favorite"
	"github.com/orgball2608/story-explorer/internal/repositories/pending"
	"github.com/orgball2608/story-explorer/internal/repositories/storycache"
	"github.com/orgball2608/story-explorer/internal/storyapi"
	"github.com/orgball2608/story-explorer/internal/syncer"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Favorites  favorite.Repository
	Pending    pending.Repository
	StoryCache storycache.Repository
	API        storyapi.Client
	Syncer     syncer.Client
	Monitor    connectivity.Monitor
	Logger     logger.Logger
}

type ExplorerImpl struct {
	favorites  favorite.Repository
	pending    pending.Repository
	storyCache storycache.Repository
	api        storyapi.Client
	syncer     syncer.Client
	monitor    connectivity.Monitor
	logger     logger.Logger
	newKey     func() string
}

func New(opts Opts) *ExplorerImpl {
	return &ExplorerImpl{
		favorites:  opts.Favorites,
		pending:    opts.Pending,
		storyCache: opts.StoryCache,
		api:        opts.API,
		syncer:     opts.Syncer,
		monitor:    opts.Monitor,
		logger:     opts.Logger.WithComponent("Explorer"),
		newKey:     newIdempotencyKey,
	}
}

var _ explorer.Service = (*ExplorerImpl)(nil)
