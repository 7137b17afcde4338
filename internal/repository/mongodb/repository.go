package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cognitionx/trackerx/internal/domain/models"
)

// Ledger records submitted audit decisions so a work order is submitted at
// most once, even across process restarts.
type Ledger interface {
	HasSubmission(ctx context.Context, workOrder string) (bool, error)
	RecordSubmission(ctx context.Context, sub models.AuditSubmission) error
	SubmissionsSince(ctx context.Context, since time.Time) ([]SubmissionRecord, error)
}

// SubmissionRecord is the persisted form of an audit submission.
type SubmissionRecord struct {
	WorkOrder   string    `bson:"work_order" json:"work_order"`
	AuditResult string    `bson:"audit_result" json:"audit_result"`
	InspectedBy string    `bson:"inspected_by" json:"inspected_by"`
	Style       string    `bson:"style" json:"style"`
	Color       string    `bson:"color" json:"color"`
	OrderQty    float64   `bson:"order_qty" json:"order_qty"`
	AuditDate   string    `bson:"audit_date" json:"audit_date"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}

var _ Ledger = (*MongoDBLedger)(nil)

// MongoDBLedger implements the Ledger interface for MongoDB.
type MongoDBLedger struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBLedger creates a new MongoDB-backed submission ledger.
func NewMongoDBLedger(ctx context.Context, uri string, dbName string) (*MongoDBLedger, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	ledger := &MongoDBLedger{
		client:   client,
		dbName:   dbName,
		collName: "aql_submissions",
	}

	if _, err := ledger.collection().Indexes().CreateMany(ctx, submissionIndexes()); err != nil {
		return nil, fmt.Errorf("failed to ensure submission indexes: %w", err)
	}

	return ledger, nil
}

// submissionIndexes declares the ledger's index set. The unique work_order
// index is what makes the submitted-at-most-once guarantee hold when two
// writers pass the HasSubmission check concurrently.
func submissionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{{
		Keys:    bson.D{{Key: "work_order", Value: 1}},
		Options: options.Index().SetUnique(true),
	}}
}

func (l *MongoDBLedger) collection() *mongo.Collection {
	return l.client.Database(l.dbName).Collection(l.collName)
}

// HasSubmission reports whether a decision was already submitted for the work order.
func (l *MongoDBLedger) HasSubmission(ctx context.Context, workOrder string) (bool, error) {
	count, err := l.collection().CountDocuments(ctx, bson.M{"work_order": workOrder}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count submissions for %s: %w", workOrder, err)
	}
	return count > 0, nil
}

// RecordSubmission stores an accepted submission.
func (l *MongoDBLedger) RecordSubmission(ctx context.Context, sub models.AuditSubmission) error {
	record := SubmissionRecord{
		WorkOrder:   sub.WorkOrder,
		AuditResult: sub.AuditResult,
		InspectedBy: sub.InspectedBy,
		Style:       sub.Style,
		Color:       sub.Color,
		OrderQty:    sub.OrderQty,
		AuditDate:   sub.AuditDate,
		SubmittedAt: time.Now().UTC(),
	}

	if _, err := l.collection().InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A concurrent writer recorded this work order first; the ledger
			// already holds the submission.
			return nil
		}
		return fmt.Errorf("failed to insert submission record: %w", err)
	}
	return nil
}

// SubmissionsSince returns all submissions recorded at or after the given time.
func (l *MongoDBLedger) SubmissionsSince(ctx context.Context, since time.Time) ([]SubmissionRecord, error) {
	cursor, err := l.collection().Find(ctx, bson.M{"submitted_at": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []SubmissionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}
	return records, nil
}

// Close closes the MongoDB connection.
func (l *MongoDBLedger) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}
