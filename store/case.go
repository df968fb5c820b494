package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/epitrend/epitrend-api/schema"
)

var (
	ErrCaseFetch  = fmt.Errorf("fetch case records fail")
	ErrCaseDecode = fmt.Errorf("decode case record fail")
)

// CaseOperator persists loaded case records so the API can serve a
// snapshot without re-reading the source file.
type CaseOperator interface {
	ReplaceCases(ctx context.Context, records []schema.CaseRecord) error
	ListCases(ctx context.Context) ([]schema.CaseRecord, error)
	DeleteCasesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReplaceCases upserts every record keyed by (country, state, date), so a
// re-import of the same report replaces rows instead of duplicating them.
func (m *mongoDB) ReplaceCases(ctx context.Context, records []schema.CaseRecord) error {
	if len(records) == 0 {
		log.WithField("prefix", mongoLogPrefix).Debug("no case record to update")
		return nil
	}

	collection := m.client.Database(m.database).Collection(CaseCollection)
	opts := options.Replace().SetUpsert(true)
	for _, r := range records {
		filter := bson.M{"country": r.Country, "state": r.State, "date": r.Date}
		if _, err := collection.ReplaceOne(ctx, filter, r, opts); err != nil {
			log.WithFields(log.Fields{"prefix": mongoLogPrefix, "country": r.Country, "error": err}).Error("replace case record")
			return err
		}
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": len(records)}).Debug("ReplaceCases upserted records")
	return nil
}

// ListCases returns every stored record ordered by date, then country.
func (m *mongoDB) ListCases(ctx context.Context) ([]schema.CaseRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "country", Value: 1}})
	cur, err := m.client.Database(m.database).Collection(CaseCollection).Find(ctx, bson.M{}, opts)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("%v: %s", ErrCaseFetch, err)
		return nil, ErrCaseFetch
	}
	defer cur.Close(ctx)

	var records []schema.CaseRecord
	for cur.Next(ctx) {
		var r schema.CaseRecord
		if errDecode := cur.Decode(&r); errDecode != nil {
			log.WithField("prefix", mongoLogPrefix).Errorf("case record decode with error: %s", errDecode)
			return nil, ErrCaseDecode
		}
		records = append(records, r)
	}
	return records, nil
}

// DeleteCasesBefore prunes rows older than the retention cutoff.
func (m *mongoDB) DeleteCasesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{"date": bson.D{{Key: "$lt", Value: cutoff}}}
	res, err := m.client.Database(m.database).Collection(CaseCollection).DeleteMany(ctx, filter)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Warnf("delete stale case records with error: %s", err)
		return 0, err
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": res.DeletedCount}).Debug("DeleteCasesBefore removed records")
	return res.DeletedCount, nil
}
