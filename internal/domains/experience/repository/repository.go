package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"guide/infras/otel"
	"guide/infras/postgres"
	"guide/internal/domains/experience/model"
	gDto "guide/shared/dto"
	gRepo "guide/shared/repository"
)

type Experience interface {
	Insert(ctx context.Context, model model.Experience) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Experience, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Experience, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Experience]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Experience {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Experience](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
