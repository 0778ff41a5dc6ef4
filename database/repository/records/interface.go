package recordsRepo

import (
	"context"

	"tempobook/database"
	"tempobook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingRecordRepository persists the audit trail of committed bookings.
type BookingRecordRepository interface {
	Create(ctx context.Context, record models.BookingRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.BookingRecord, error)
	GetByIdentity(ctx context.Context, identity string) ([]models.BookingRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a new BookingRecordRepository instance using MongoDB.
func NewMongoRecordRepo() BookingRecordRepository {
	db := database.MongoClient.Database("tempobook")
	return &mongoRecordRepo{
		coll: db.Collection("booking_records"),
	}
}
