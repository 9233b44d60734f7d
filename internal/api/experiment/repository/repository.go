package experimentRepository

import (
	"LeadPilot/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Variants:     &variantsRepository{q: sqlExecutor, log: r.log},
		Interactions: &interactionsRepository{q: sqlExecutor, log: r.log},
		Commit:       commitFunc,
		Rollback:     rollbackFunc,
	}, nil
}

type Client struct {
	Variants interface {
		CreateVariant(ctx context.Context, variant entity.MessageVariant) error
		GetVariantByID(ctx context.Context, id string) (entity.MessageVariant, error)
		GetActiveByScenario(ctx context.Context, scenarioKey string) ([]entity.MessageVariant, error)
		GetScenarioKeys(ctx context.Context) ([]string, error)
		GetAllVariants(ctx context.Context, limit, offset int) ([]entity.MessageVariant, int, error)
		IncrementCounters(ctx context.Context, id string, delta entity.VariantCounterDelta) error
		SetSignificance(ctx context.Context, id string, confidence float64, isWinner bool) error
		DemoteControl(ctx context.Context, scenarioKey string) error
		PromoteVariant(ctx context.Context, id string) error
	}

	Interactions interface {
		CreateInteraction(ctx context.Context, interaction entity.VariantInteraction) error
	}

	Commit   func() error
	Rollback func() error
}

type variantsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type interactionsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
