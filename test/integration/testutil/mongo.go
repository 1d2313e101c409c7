package testutil

import (
	"context"
	"testing"
	"time"

	bookingsrepository "docbook/internal/bookings/repository"
	doctorsrepository "docbook/internal/doctors/repository"
	mongodb "docbook/pkg/db/mongo"
	"docbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "docbook"
	ConnectionTimeout   = 10 * time.Second
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongodb.Connect(ctx, mongoURI)
	if err != nil {
		t.Fatalf("MongoDB at %s: %v", mongoURI, err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanCollections deletes every document but keeps the collections, so
// the migrated validators and indexes stay in place.
func (m *MongoHelper) CleanCollections(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{
		doctorsrepository.CollectionName,
		bookingsrepository.CollectionName,
		bookingsrepository.LockCollectionName,
	} {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) InsertDoctor(t *testing.T, doctor model.Doctor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(doctorsrepository.CollectionName).InsertOne(ctx, doctor); err != nil {
		t.Fatalf("failed to insert doctor %s: %v", doctor.ID, err)
	}
}

func (m *MongoHelper) CountBookings(t *testing.T, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(bookingsrepository.CollectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count bookings: %v", err)
	}
	return count
}
