package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"staffhub-report/internal/config"
	"staffhub-report/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient wraps the MongoDB client for the report subsystem
type MongoClient struct {
	client                  *mongo.Client
	database                *mongo.Database
	templatesCollection     *mongo.Collection
	scheduledCollection     *mongo.Collection
	notificationsCollection *mongo.Collection
}

// NewMongoClient creates a new MongoDB client
func NewMongoClient(cfg config.MongoDBConfig) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI
	uri := cfg.URI
	if uri == "" {
		if cfg.Username != "" && cfg.Password != "" {
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s", cfg.Host, cfg.Port, cfg.Database)
		}
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)
	templates := database.Collection("report_templates")
	scheduled := database.Collection("scheduled_reports")
	notifications := database.Collection("notifications")

	// Index for the poller's due-job query
	dueIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "nextRun", Value: 1}},
	}
	if _, err := scheduled.Indexes().CreateOne(ctx, dueIndex); err != nil {
		// Index might already exist, that's okay
		log.Printf("Note: scheduled_reports index creation: %v", err)
	}

	nameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	}
	if _, err := templates.Indexes().CreateOne(ctx, nameIndex); err != nil {
		log.Printf("Note: report_templates index creation: %v", err)
	}

	return &MongoClient{
		client:                  client,
		database:                database,
		templatesCollection:     templates,
		scheduledCollection:     scheduled,
		notificationsCollection: notifications,
	}, nil
}

// Close closes the MongoDB client connection
func (c *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// --- Report templates ---

// CreateTemplate inserts a template and returns it with its new ID
func (c *MongoClient) CreateTemplate(ctx context.Context, t *models.ReportTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := c.templatesCollection.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template by hex ID. Returns nil when not found.
func (c *MongoClient) GetTemplate(ctx context.Context, id string) (*models.ReportTemplate, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.ReportTemplate
	err = c.templatesCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&t)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query template: %w", err)
	}
	return &t, nil
}

// ListTemplates returns all templates, newest first
func (c *MongoClient) ListTemplates(ctx context.Context) ([]models.ReportTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.templatesCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.ReportTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate replaces a template's mutable fields
func (c *MongoClient) UpdateTemplate(ctx context.Context, id string, t *models.ReportTemplate) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        t.Name,
		"description": t.Description,
		"type":        t.Type,
		"fields":      t.Fields,
		"filters":     t.Filters,
		"sortBy":      t.SortBy,
		"groupBy":     t.GroupBy,
		"layout":      t.Layout,
		"updatedAt":   time.Now(),
	}}
	result, err := c.templatesCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("template not found: %s", id)
	}
	return nil
}

// DeleteTemplate removes a template
func (c *MongoClient) DeleteTemplate(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.templatesCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// --- Scheduled reports ---

// CreateScheduledReport inserts a scheduled report
func (c *MongoClient) CreateScheduledReport(ctx context.Context, r *models.ScheduledReport) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := c.scheduledCollection.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to create scheduled report: %w", err)
	}
	return nil
}

// GetScheduledReport retrieves a scheduled report by hex ID. Returns nil when not found.
func (c *MongoClient) GetScheduledReport(ctx context.Context, id string) (*models.ScheduledReport, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r models.ScheduledReport
	err = c.scheduledCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query scheduled report: %w", err)
	}
	return &r, nil
}

// ListScheduledReports returns all scheduled reports, newest first
func (c *MongoClient) ListScheduledReports(ctx context.Context) ([]models.ScheduledReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.scheduledCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []models.ScheduledReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled reports: %w", err)
	}
	return reports, nil
}

// UpdateScheduledReport replaces a scheduled report's user-editable fields
func (c *MongoClient) UpdateScheduledReport(ctx context.Context, id string, r *models.ScheduledReport) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid scheduled report id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":          r.Name,
		"description":   r.Description,
		"templateId":    r.TemplateID,
		"schedule":      r.Schedule,
		"recipients":    r.Recipients,
		"parameters":    r.Parameters,
		"format":        r.Format,
		"retentionDays": r.RetentionDays,
		"nextRun":       r.NextRun,
		"updatedAt":     time.Now(),
	}}
	result, err := c.scheduledCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update scheduled report: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("scheduled report not found: %s", id)
	}
	return nil
}

// DeleteScheduledReport removes a scheduled report
func (c *MongoClient) DeleteScheduledReport(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid scheduled report id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.scheduledCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete scheduled report: %w", err)
	}
	return nil
}

// SetScheduledReportActive toggles a scheduled report. On reactivation the
// caller passes a freshly computed nextRun.
func (c *MongoClient) SetScheduledReportActive(ctx context.Context, id string, active bool, nextRun time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid scheduled report id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"isActive": active, "updatedAt": time.Now()}
	if active {
		set["nextRun"] = nextRun
	}
	result, err := c.scheduledCollection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to toggle scheduled report: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("scheduled report not found: %s", id)
	}
	return nil
}

// FindDueReports returns all active scheduled reports whose nextRun has passed
func (c *MongoClient) FindDueReports(ctx context.Context, now time.Time) ([]models.ScheduledReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"isActive": true,
		"nextRun":  bson.M{"$lte": now},
	}
	cursor, err := c.scheduledCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []models.ScheduledReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode due reports: %w", err)
	}
	return reports, nil
}

// ClaimDueReport atomically advances a due job's nextRun, keyed on the
// nextRun the poller observed. A concurrent poller loses the conditional
// match and must skip the job. This is a lease, not an in-memory lock.
func (c *MongoClient) ClaimDueReport(ctx context.Context, id primitive.ObjectID, observedNextRun, newNextRun time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":      id,
		"isActive": true,
		"nextRun":  observedNextRun,
	}
	update := bson.M{"$set": bson.M{"nextRun": newNextRun, "updatedAt": time.Now()}}
	result, err := c.scheduledCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to claim scheduled report: %w", err)
	}
	return result.MatchedCount == 1, nil
}

// RecordRun records the outcome of one execution attempt and updates the
// run-history state regardless of success or failure.
func (c *MongoClient) RecordRun(ctx context.Context, id primitive.ObjectID, run models.RunResult) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"lastRun":   run.CompletedAt,
		"nextRun":   run.NextRun,
		"updatedAt": time.Now(),
	}
	inc := bson.M{"runCount": 1}
	if run.Success {
		set["lastError"] = ""
	} else {
		set["lastError"] = run.Error
		inc["failureCount"] = 1
	}

	update := bson.M{"$set": set, "$inc": inc}
	result, err := c.scheduledCollection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("scheduled report not found: %s", id.Hex())
	}
	return nil
}

// --- Domain datasets ---

// FindRecords runs a filtered query against a domain dataset collection and
// returns the raw documents as generic records
func (c *MongoClient) FindRecords(ctx context.Context, collection string, filter bson.M) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := c.database.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s documents: %w", collection, err)
	}

	records := make([]models.Record, len(docs))
	for i, doc := range docs {
		records[i] = models.Record(doc)
	}
	return records, nil
}

// CountRecords counts documents in a dataset collection
func (c *MongoClient) CountRecords(ctx context.Context, collection string, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count, err := c.database.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s documents: %w", collection, err)
	}
	return count, nil
}

// InsertRecords seeds documents into a dataset collection (used by the seed utility)
func (c *MongoClient) InsertRecords(ctx context.Context, collection string, docs []interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := c.database.Collection(collection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert %s documents: %w", collection, err)
	}
	return nil
}

// --- Notifications ---

// InsertNotification stores an in-app notification
func (c *MongoClient) InsertNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()

	if _, err := c.notificationsCollection.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
