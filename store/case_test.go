package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/epitrend/epitrend-api/schema"
)

// CaseStoreTestSuite runs against a live mongodb set by
// EPITREND_TEST_MONGO_CONN; it is skipped otherwise.
type CaseStoreTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
}

func TestCaseStoreTestSuite(t *testing.T) {
	connURI := os.Getenv("EPITREND_TEST_MONGO_CONN")
	if connURI == "" {
		t.Skip("EPITREND_TEST_MONGO_CONN not set")
	}
	suite.Run(t, &CaseStoreTestSuite{connURI: connURI, testDBName: "test-epitrend"})
}

func (s *CaseStoreTestSuite) SetupSuite() {
	opts := options.Client().ApplyURI(s.connURI)
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		s.T().Fatalf("create mongo client with error: %s", err)
	}
	if err = mongoClient.Connect(context.Background()); nil != err {
		s.T().Fatalf("connect mongo database with error: %s", err)
	}

	s.mongoClient = mongoClient
	s.testDatabase = mongoClient.Database(s.testDBName)

	// make sure the test suite is run with a clean environment
	if err := s.testDatabase.Drop(context.Background()); err != nil {
		s.T().Fatal(err)
	}
}

func (s *CaseStoreTestSuite) fixtureRecords() []schema.CaseRecord {
	day := func(d int) time.Time { return time.Date(2020, 7, d, 0, 0, 0, 0, time.UTC) }
	return []schema.CaseRecord{
		{Country: "Taiwan", Date: day(1), Confirmed: 100, Deaths: 2, Recovered: 90, Active: 8},
		{Country: "Taiwan", Date: day(2), Confirmed: 101, Deaths: 2, Recovered: 91, Active: 8},
		{Country: "Iceland", Date: day(1), Confirmed: 50, Deaths: 1, Recovered: 40, Active: 9},
	}
}

func (s *CaseStoreTestSuite) TestReplaceAndListCases() {
	store := NewMongoStore(s.mongoClient, s.testDBName)
	records := s.fixtureRecords()

	s.NoError(store.ReplaceCases(context.Background(), records))

	// replacing again must not duplicate rows
	s.NoError(store.ReplaceCases(context.Background(), records))
	count, err := s.testDatabase.Collection(CaseCollection).CountDocuments(context.Background(), bson.M{})
	s.NoError(err)
	s.Equal(int64(3), count)

	listed, err := store.ListCases(context.Background())
	s.NoError(err)
	s.Len(listed, 3)
	s.Equal("Iceland", listed[0].Country)
}

func (s *CaseStoreTestSuite) TestDeleteCasesBefore() {
	store := NewMongoStore(s.mongoClient, s.testDBName)
	s.NoError(store.ReplaceCases(context.Background(), s.fixtureRecords()))

	deleted, err := store.DeleteCasesBefore(context.Background(), time.Date(2020, 7, 2, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(int64(2), deleted)
}

func (s *CaseStoreTestSuite) TestReplaceAndListSummaries() {
	store := NewMongoStore(s.mongoClient, s.testDBName)
	summaries := []schema.CountrySummary{
		{Country: "Taiwan", Confirmed: 201, Deaths: 4, Recovered: 181, Active: 16},
		{Country: "Iceland", Confirmed: 50, Deaths: 1, Recovered: 40, Active: 9},
	}

	s.NoError(store.ReplaceSummaries(context.Background(), summaries))
	s.NoError(store.ReplaceSummaries(context.Background(), summaries))

	listed, err := store.ListSummaries(context.Background())
	s.NoError(err)
	s.Len(listed, 2)
	s.Equal("Iceland", listed[0].Country)
}

func (s *CaseStoreTestSuite) TearDownSuite() {
	if s.testDatabase != nil {
		_ = s.testDatabase.Drop(context.Background())
	}
	if s.mongoClient != nil {
		_ = s.mongoClient.Disconnect(context.Background())
	}
}
