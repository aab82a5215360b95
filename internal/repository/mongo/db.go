package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const userCollectionName = "users"

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connection can succeed against an unresponsive server, so ping as well.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every collection onto db.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Members:    NewMemberRepository(db),
		Invoices:   NewInvoiceRepository(db),
		Trainers:   NewTrainerRepository(db),
		Visitors:   &visitorRepo{newStore[domain.Visitor](db.Collection(domain.CollectionVisitors), repository.VisitorSchema)},
		FollowUps:  &followUpRepo{newStore[domain.FollowUp](db.Collection(domain.CollectionFollowUps), repository.FollowUpSchema)},
		Sessions:   &sessionRepo{newStore[domain.Session](db.Collection(domain.CollectionSessions), repository.SessionSchema)},
		Activities: NewActivityRepository(db),
		CheckIns:   &checkInRepo{newStore[domain.CheckIn](db.Collection(domain.CollectionCheckIns), repository.CheckInSchema)},
		Users:      NewUserRepository(db),
	}
}

type visitorRepo struct{ store[domain.Visitor] }

type followUpRepo struct{ store[domain.FollowUp] }

type sessionRepo struct{ store[domain.Session] }

type checkInRepo struct{ store[domain.CheckIn] }

func indexModels() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		domain.CollectionMembers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiryDate", Value: 1}}},
			{Keys: bson.D{{Key: "assignedTrainer", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		domain.CollectionInvoices: {
			{Keys: bson.D{{Key: "memberId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		domain.CollectionFollowUps: {
			{Keys: bson.D{{Key: "memberId", Value: 1}}},
			{Keys: bson.D{{Key: "visitorId", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}},
		},
		domain.CollectionSessions: {
			{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "startTime", Value: -1}}},
			{Keys: bson.D{{Key: "memberId", Value: 1}}},
		},
		domain.CollectionActivities: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "memberId", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		domain.CollectionCheckIns: {
			{Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
		userCollectionName: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
	}
}

// EnsureIndexes creates the indexes of every collection.
// Call this once during application startup. Failures are logged, not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	for name, models := range indexModels() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}
