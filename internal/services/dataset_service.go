package services

import (
	"context"
	"log"
	"time"

	"staffhub-report/internal/database"
	"staffhub-report/internal/models"
	"staffhub-report/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DatasetFetcher resolves runtime parameters to a slice of enriched records
type DatasetFetcher func(ctx context.Context, params models.Parameters) ([]models.Record, error)

// DatasetService provides the built-in dataset fetchers backed by MongoDB.
// Each fetcher pushes the parameter pre-filters (date range, explicit id
// lists) down to the store, then enriches the flat documents with derived
// fields the persisted documents do not carry.
type DatasetService struct {
	db *database.MongoClient
}

// NewDatasetService creates a new dataset service
func NewDatasetService(db *database.MongoClient) *DatasetService {
	return &DatasetService{db: db}
}

// FetchCandidates returns candidate records with derived experience fields
func (s *DatasetService) FetchCandidates(ctx context.Context, params models.Parameters) ([]models.Record, error) {
	records, err := s.db.FindRecords(ctx, "candidates", buildPreFilter(params, "createdAt"))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		EnrichCandidate(rec)
	}
	return records, nil
}

// FetchTrainings returns training records with completion percentages
func (s *DatasetService) FetchTrainings(ctx context.Context, params models.Parameters) ([]models.Record, error) {
	records, err := s.db.FindRecords(ctx, "trainings", buildPreFilter(params, "startDate"))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		EnrichTraining(rec)
	}
	return records, nil
}

// FetchPayments returns payment records with derived net amounts
func (s *DatasetService) FetchPayments(ctx context.Context, params models.Parameters) ([]models.Record, error) {
	records, err := s.db.FindRecords(ctx, "payments", buildPreFilter(params, "paidAt"))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		EnrichPayment(rec)
	}
	return records, nil
}

// FetchAnalytics computes summary metrics across the other datasets. The
// result is a single record so analytics templates can select from it with
// plain source paths.
func (s *DatasetService) FetchAnalytics(ctx context.Context, params models.Parameters) ([]models.Record, error) {
	candidates, err := s.FetchCandidates(ctx, params)
	if err != nil {
		return nil, err
	}
	trainings, err := s.FetchTrainings(ctx, params)
	if err != nil {
		return nil, err
	}
	payments, err := s.FetchPayments(ctx, params)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int)
	for _, c := range candidates {
		if status, ok := utils.Resolve(c, "status"); ok {
			if str, ok := status.(string); ok {
				byStatus[str]++
			}
		}
	}

	completedTrainings := 0
	for _, t := range trainings {
		if pct, ok := utils.Resolve(t, "completionPercent"); ok {
			if f, ok := utils.ToFloat(pct); ok && f >= 100 {
				completedTrainings++
			}
		}
	}

	var totalPaid float64
	for _, p := range payments {
		if amount, ok := utils.Resolve(p, "amount"); ok {
			if f, ok := utils.ToFloat(amount); ok {
				totalPaid += f
			}
		}
	}

	summary := models.Record{
		"totalCandidates":    len(candidates),
		"hiredCandidates":    byStatus["HIRED"],
		"deployedCandidates": byStatus["DEPLOYED"],
		"totalTrainings":     len(trainings),
		"completedTrainings": completedTrainings,
		"totalPayments":      len(payments),
		"totalPaidAmount":    totalPaid,
		"generatedAt":        time.Now(),
	}
	if len(trainings) > 0 {
		summary["trainingCompletionRate"] = float64(completedTrainings) / float64(len(trainings)) * 100
	} else {
		summary["trainingCompletionRate"] = 0.0
	}
	return []models.Record{summary}, nil
}

// buildPreFilter translates the opaque parameter bag into a store-side
// filter: startDate/endDate against the dataset's time field, ids against _id
func buildPreFilter(params models.Parameters, timeField string) bson.M {
	filter := bson.M{}
	if params == nil {
		return filter
	}

	timeRange := bson.M{}
	if start, ok := params.Time("startDate"); ok {
		timeRange["$gte"] = start
	}
	if end, ok := params.Time("endDate"); ok {
		timeRange["$lte"] = end
	}
	if len(timeRange) > 0 {
		filter[timeField] = timeRange
	}

	if ids := params.StringSlice("ids"); len(ids) > 0 {
		objectIDs := make([]primitive.ObjectID, 0, len(ids))
		for _, id := range ids {
			objectID, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				log.Printf("WARNING: Skipping invalid id parameter %q: %v", id, err)
				continue
			}
			objectIDs = append(objectIDs, objectID)
		}
		if len(objectIDs) > 0 {
			filter["_id"] = bson.M{"$in": objectIDs}
		}
	}

	return filter
}

// --- Enrichment ---
//
// Enrichment functions are pure: they derive fields from whatever nested
// data is present and degrade to zero/empty on missing or malformed input
// instead of failing the report.

// EnrichCandidate adds monthsOfExperience (from joinedAt) and fullName
func EnrichCandidate(rec models.Record) {
	if joined, ok := utils.Resolve(rec, "joinedAt"); ok {
		rec["monthsOfExperience"] = monthsSince(joined, time.Now())
	} else {
		rec["monthsOfExperience"] = 0
	}

	first, _ := utils.Resolve(rec, "firstName")
	last, _ := utils.Resolve(rec, "lastName")
	firstStr, _ := first.(string)
	lastStr, _ := last.(string)
	switch {
	case firstStr != "" && lastStr != "":
		rec["fullName"] = firstStr + " " + lastStr
	case firstStr != "":
		rec["fullName"] = firstStr
	case lastStr != "":
		rec["fullName"] = lastStr
	}
}

// EnrichTraining adds completionPercent from completedSessions/totalSessions
func EnrichTraining(rec models.Record) {
	total, totalOK := resolveFloat(rec, "totalSessions")
	completed, completedOK := resolveFloat(rec, "completedSessions")
	if !totalOK || !completedOK || total <= 0 {
		rec["completionPercent"] = 0.0
		return
	}
	pct := completed / total * 100
	if pct > 100 {
		pct = 100
	}
	rec["completionPercent"] = pct
}

// EnrichPayment adds netAmount = amount - deductions
func EnrichPayment(rec models.Record) {
	amount, _ := resolveFloat(rec, "amount")
	deductions, _ := resolveFloat(rec, "deductions")
	rec["netAmount"] = amount - deductions
}

func resolveFloat(rec models.Record, path string) (float64, bool) {
	v, ok := utils.Resolve(rec, path)
	if !ok {
		return 0, false
	}
	return utils.ToFloat(v)
}

// monthsSince computes whole months between a flexible time value and now,
// never negative
func monthsSince(v interface{}, now time.Time) int {
	t, ok := utils.ToTime(v)
	if !ok || t.After(now) {
		return 0
	}
	months := (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
	if now.Day() < t.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
