package store

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/epitrend/epitrend-api/schema"
)

var (
	ErrSummaryFetch  = fmt.Errorf("fetch country summaries fail")
	ErrSummaryDecode = fmt.Errorf("decode country summary fail")
)

// SummaryOperator persists computed country totals alongside the raw rows.
type SummaryOperator interface {
	ReplaceSummaries(ctx context.Context, summaries []schema.CountrySummary) error
	ListSummaries(ctx context.Context) ([]schema.CountrySummary, error)
}

// ReplaceSummaries upserts one document per country.
func (m *mongoDB) ReplaceSummaries(ctx context.Context, summaries []schema.CountrySummary) error {
	if len(summaries) == 0 {
		log.WithField("prefix", mongoLogPrefix).Debug("no summary to update")
		return nil
	}

	collection := m.client.Database(m.database).Collection(SummaryCollection)
	opts := options.Replace().SetUpsert(true)
	for _, s := range summaries {
		filter := bson.M{"country": s.Country}
		if _, err := collection.ReplaceOne(ctx, filter, s, opts); err != nil {
			log.WithFields(log.Fields{"prefix": mongoLogPrefix, "country": s.Country, "error": err}).Error("replace country summary")
			return err
		}
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "countries": len(summaries)}).Debug("ReplaceSummaries upserted summaries")
	return nil
}

// ListSummaries returns stored summaries ordered by country name.
func (m *mongoDB) ListSummaries(ctx context.Context) ([]schema.CountrySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"country": 1})
	cur, err := m.client.Database(m.database).Collection(SummaryCollection).Find(ctx, bson.M{}, opts)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("%v: %s", ErrSummaryFetch, err)
		return nil, ErrSummaryFetch
	}
	defer cur.Close(ctx)

	var summaries []schema.CountrySummary
	for cur.Next(ctx) {
		var s schema.CountrySummary
		if errDecode := cur.Decode(&s); errDecode != nil {
			log.WithField("prefix", mongoLogPrefix).Errorf("summary decode with error: %s", errDecode)
			return nil, ErrSummaryDecode
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
