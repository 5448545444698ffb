package feature

import (
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/adapter"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/repository"
)

var (
	ErrNoDatabase     = goerr.New("offline database is not configured")
	ErrNoSource       = goerr.New("offline feature source is not configured")
	ErrNoOnlineStore  = goerr.New("online store is not configured")
	ErrNoStorage      = goerr.New("object storage is not configured")
	ErrViewNotDefined = goerr.New("feature view is not defined")
)

// UseCase moves feature data between raw datasets, the offline store and the online store
type UseCase struct {
	db      *sql.DB
	source  OfflineSource
	store   repository.OnlineStore
	storage adapter.Storage
	views   []model.FeatureView
}

type Option func(*UseCase)

// WithDatabase sets the MySQL database raw datasets are loaded into. It is
// also the offline source unless WithOfflineSource is given.
func WithDatabase(db *sql.DB) Option {
	return func(uc *UseCase) {
		uc.db = db
	}
}

func WithOfflineSource(source OfflineSource) Option {
	return func(uc *UseCase) {
		uc.source = source
	}
}

func WithOnlineStore(store repository.OnlineStore) Option {
	return func(uc *UseCase) {
		uc.store = store
	}
}

func WithStorage(storage adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.storage = storage
	}
}

func WithViews(views []model.FeatureView) Option {
	return func(uc *UseCase) {
		uc.views = views
	}
}

func New(opts ...Option) *UseCase {
	uc := &UseCase{}
	for _, opt := range opts {
		opt(uc)
	}

	if uc.views == nil {
		uc.views = DefaultViews()
	}
	if uc.source == nil && uc.db != nil {
		uc.source = NewMySQLSource(uc.db)
	}

	return uc
}

func (uc *UseCase) Views() []model.FeatureView {
	return uc.views
}

func (uc *UseCase) View(name string) (model.FeatureView, error) {
	for _, v := range uc.views {
		if v.Name == name {
			return v, nil
		}
	}
	return model.FeatureView{}, goerr.Wrap(ErrViewNotDefined, "unknown feature view", goerr.V("view", name))
}
