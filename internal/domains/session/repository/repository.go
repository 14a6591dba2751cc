package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"guide/infras/otel"
	"guide/infras/postgres"
	"guide/internal/domains/session/model"
	gDto "guide/shared/dto"
	gRepo "guide/shared/repository"
)

type AuthUser interface {
	Insert(ctx context.Context, model model.AuthUser) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.AuthUser, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.AuthUser]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) AuthUser {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.AuthUser](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
