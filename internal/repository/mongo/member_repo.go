package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/repository"
)

// mongoMemberRepository implements repository.MemberRepository.
type mongoMemberRepository struct {
	store[domain.Member]
	checkIns  *mongo.Collection
	invoices  *mongo.Collection
	followUps *mongo.Collection
}

func NewMemberRepository(db *mongo.Database) repository.MemberRepository {
	return &mongoMemberRepository{
		store:     newStore[domain.Member](db.Collection(domain.CollectionMembers), repository.MemberSchema),
		checkIns:  db.Collection(domain.CollectionCheckIns),
		invoices:  db.Collection(domain.CollectionInvoices),
		followUps: db.Collection(domain.CollectionFollowUps),
	}
}

func (r *mongoMemberRepository) FindByContact(ctx context.Context, email, phone, excludeID string) (*domain.Member, error) {
	filter := bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"phone": phone}}}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	var m domain.Member
	if err := r.collection.FindOne(ctx, filter).Decode(&m); err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// RecordCheckIn increments the visit counter with a single conditional update,
// so concurrent check-ins never lose an increment.
func (r *mongoMemberRepository) RecordCheckIn(ctx context.Context, checkIn *domain.CheckIn) (*domain.Member, error) {
	filter := bson.M{"_id": checkIn.MemberID, "status": domain.MemberActive}
	update := bson.M{
		"$inc": bson.M{"totalVisits": 1},
		"$set": bson.M{"lastVisit": checkIn.Timestamp, "updatedAt": checkIn.Timestamp},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var member domain.Member
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := r.GetByID(ctx, checkIn.MemberID)
		if getErr != nil {
			return nil, getErr
		}
		return current, repository.ErrPrecondition
	}
	if err != nil {
		return nil, err
	}

	checkIn.MemberName = member.Name
	if _, err := r.checkIns.InsertOne(ctx, checkIn); err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *mongoMemberRepository) ExpiringBefore(ctx context.Context, cutoff time.Time) ([]domain.Member, error) {
	filter := bson.M{"status": domain.MemberActive, "expiryDate": bson.M{"$lte": cutoff}}
	opts := options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoMemberRepository) ExpireLapsed(ctx context.Context, now time.Time) ([]domain.Member, error) {
	filter := bson.M{"status": domain.MemberActive, "expiryDate": bson.M{"$lt": now}}
	lapsed, err := r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}}))
	if err != nil || len(lapsed) == 0 {
		return lapsed, err
	}

	ids := make(bson.A, len(lapsed))
	for i := range lapsed {
		ids[i] = lapsed[i].ID
		lapsed[i].Status = domain.MemberExpired
		lapsed[i].UpdatedAt = now
	}
	_, err = r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": domain.MemberActive},
		bson.M{"$set": bson.M{"status": domain.MemberExpired, "updatedAt": now}},
	)
	if err != nil {
		return nil, err
	}
	return lapsed, nil
}

// manyDeleter is the part of *mongo.Collection used by the delete cascade.
type manyDeleter interface {
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Delete removes the member and cascades to its invoices and follow-ups.
// Standalone servers have no multi-document transactions, so dependents go
// first and the member last: a failure part way leaves the member in place
// and a retried delete finishes the job without orphaning any record.
func (r *mongoMemberRepository) Delete(ctx context.Context, id string) error {
	return cascadeDelete(ctx, id, func(ctx context.Context) error {
		return r.store.Delete(ctx, id)
	}, r.invoices, r.followUps)
}

func cascadeDelete(ctx context.Context, memberID string, deleteMember func(context.Context) error, dependents ...manyDeleter) error {
	for _, c := range dependents {
		if _, err := c.DeleteMany(ctx, bson.M{"memberId": memberID}); err != nil {
			return err
		}
	}
	return deleteMember(ctx)
}
