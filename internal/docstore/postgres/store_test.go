package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type storeSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	store     *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeSuite))
}

func (s *storeSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.store, err = Open(dsn)
	s.Require().NoError(err)
	s.Require().NoError(s.store.RunMigrations())
}

func (s *storeSuite) TearDownSuite() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Logf("failed to terminate container: %s", err)
		}
	}
}

func (s *storeSuite) SetupTest() {
	_, err := s.store.db.ExecContext(context.Background(), "TRUNCATE documents")
	s.Require().NoError(err)
}

func (s *storeSuite) TestMigrationsIdempotent() {
	s.NoError(s.store.RunMigrations())
}

func (s *storeSuite) TestGetDocument_NotFound() {
	_, err := s.store.GetDocument(context.Background(), docstore.Ref{Collection: "carts", ID: "nobody"})
	s.ErrorIs(err, docstore.ErrNotFound)
}

func (s *storeSuite) TestSetDocument_RoundTripAndOverwrite() {
	ctx := context.Background()
	ref := docstore.Ref{Collection: "carts", ID: "user123"}

	err := s.store.SetDocument(ctx, ref, map[string]any{
		"items": []any{
			map[string]any{"id": "1", "name": "Summer Loose Shirt", "price": 78.0, "qty": 2},
		},
	})
	s.Require().NoError(err)

	doc, err := s.store.GetDocument(ctx, ref)
	s.Require().NoError(err)
	items := docstore.Maps(doc.Data, "items")
	s.Require().Len(items, 1)
	s.Equal("Summer Loose Shirt", items[0]["name"])
	s.Equal(2, docstore.Int(items[0], "qty"))

	s.Require().NoError(s.store.SetDocument(ctx, ref, map[string]any{"items": []any{}}))

	doc, err = s.store.GetDocument(ctx, ref)
	s.Require().NoError(err)
	s.Empty(docstore.Maps(doc.Data, "items"))
}

func (s *storeSuite) TestAddDocument_FilteredCollection() {
	ctx := context.Background()
	first, err := s.store.AddDocument(ctx, "orders", map[string]any{"userId": "u1", "total": 100.0})
	s.Require().NoError(err)
	_, err = s.store.AddDocument(ctx, "orders", map[string]any{"userId": "u2", "total": 50.0})
	s.Require().NoError(err)

	docs, err := s.store.GetCollection(ctx, "orders", docstore.Where("userId", "u1"))
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal(first, docs[0].ID)

	all, err := s.store.GetCollection(ctx, "orders")
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *storeSuite) TestSubcollectionPaths() {
	ctx := context.Background()
	s.Require().NoError(s.store.SetDocument(ctx, docstore.Ref{Collection: "users/u1/orders", ID: "legacy1"}, map[string]any{"total": 5.0}))

	docs, err := s.store.GetCollection(ctx, "users/u1/orders")
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("legacy1", docs[0].ID)

	docs, err = s.store.GetCollection(ctx, "users/u2/orders")
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *storeSuite) TestUpdateDocument_MergesFields() {
	ctx := context.Background()
	ref := docstore.Ref{Collection: "orders", ID: "o1"}
	s.Require().NoError(s.store.SetDocument(ctx, ref, map[string]any{"status": "pending", "total": 10.0}))

	s.Require().NoError(s.store.UpdateDocument(ctx, ref, map[string]any{"status": "shipped"}))

	doc, err := s.store.GetDocument(ctx, ref)
	s.Require().NoError(err)
	s.Equal("shipped", doc.Data["status"])
	s.Equal(10.0, doc.Data["total"])

	err = s.store.UpdateDocument(ctx, docstore.Ref{Collection: "orders", ID: "missing"}, map[string]any{"status": "shipped"})
	s.ErrorIs(err, docstore.ErrNotFound)
}

func (s *storeSuite) TestBatchWrite_UpsertsAll() {
	ctx := context.Background()
	err := s.store.BatchWrite(ctx, []docstore.Write{
		{Ref: docstore.Ref{Collection: "products", ID: "1"}, Data: map[string]any{"name": "a"}},
		{Ref: docstore.Ref{Collection: "products", ID: "2"}, Data: map[string]any{"name": "b"}},
	})
	s.Require().NoError(err)

	docs, err := s.store.GetCollection(ctx, "products")
	s.Require().NoError(err)
	s.Len(docs, 2)

	s.Require().NoError(s.store.DeleteDocument(ctx, docstore.Ref{Collection: "products", ID: "1"}))
	docs, err = s.store.GetCollection(ctx, "products")
	s.Require().NoError(err)
	s.Len(docs, 1)
}
