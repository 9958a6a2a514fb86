// Package mongodb is the document store for the per-capita consumption
// records. The collection is fully cleared and reinserted on each pipeline
// run, mirroring the wholesale-replace policy of the relational tables.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"electricity-atlas/dataset"
)

// consumptionDoc is the stored document shape.
type consumptionDoc struct {
	CountryName string  `bson:"country_name"`
	CountryCode string  `bson:"country_code"`
	Year        int     `bson:"year"`
	Value       float64 `bson:"electricity_use_kwh_per_capita"`
}

// Store wraps one client bound to one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a client and pings the deployment.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ReplaceConsumption clears the collection and inserts all rows.
func (s *Store) ReplaceConsumption(ctx context.Context, rows []dataset.IndicatorRow) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear consumption collection: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, consumptionDoc{
			CountryName: row.CountryName,
			CountryCode: row.CountryCode,
			Year:        row.Year,
			Value:       row.Value,
		})
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert consumption documents: %w", err)
	}
	return nil
}

// Consumption reads the collection back, projecting to the fields the
// integrator joins on. Country names come from the renewable side, so they
// are not projected here.
func (s *Store) Consumption(ctx context.Context) ([]dataset.IndicatorRow, error) {
	projection := bson.D{
		{Key: "_id", Value: 0},
		{Key: "country_code", Value: 1},
		{Key: "year", Value: 1},
		{Key: "electricity_use_kwh_per_capita", Value: 1},
	}
	cursor, err := s.coll.Find(ctx, bson.D{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("failed to read consumption collection: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []dataset.IndicatorRow
	for cursor.Next(ctx) {
		var doc consumptionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode consumption document: %w", err)
		}
		rows = append(rows, dataset.IndicatorRow{
			CountryCode: doc.CountryCode,
			Year:        doc.Year,
			Value:       doc.Value,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate consumption collection: %w", err)
	}
	return rows, nil
}
