package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"staffhub-report/internal/config"
	"staffhub-report/internal/database"
	"staffhub-report/internal/models"
	"staffhub-report/internal/services"
)

// Seeds the database with sample candidates, trainings and payments plus a
// starter template and scheduled report, for local development.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client, err := database.NewMongoClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("=== Seeding sample data ===")

	now := time.Now()
	candidates := []interface{}{
		map[string]interface{}{
			"firstName": "Amina", "lastName": "Yusuf", "email": "amina.yusuf@example.com",
			"status": "HIRED", "position": "Caregiver", "country": "Kenya",
			"joinedAt": now.AddDate(-3, 0, 0), "createdAt": now.AddDate(0, -2, 0),
		},
		map[string]interface{}{
			"firstName": "Jonas", "lastName": "Weber", "email": "jonas.weber@example.com",
			"status": "IN_TRAINING", "position": "Nurse", "country": "Germany",
			"joinedAt": now.AddDate(-1, -6, 0), "createdAt": now.AddDate(0, -1, 0),
		},
		map[string]interface{}{
			"firstName": "Maria", "lastName": "Santos", "email": "maria.santos@example.com",
			"status": "DEPLOYED", "position": "Caregiver", "country": "Philippines",
			"joinedAt": now.AddDate(-5, 0, 0), "createdAt": now.AddDate(0, -3, 0),
		},
	}
	if err := client.InsertRecords(ctx, "candidates", candidates); err != nil {
		log.Fatalf("Failed to seed candidates: %v", err)
	}
	fmt.Printf("Inserted %d candidates\n", len(candidates))

	trainings := []interface{}{
		map[string]interface{}{
			"candidateEmail": "jonas.weber@example.com", "course": "German B1",
			"completedSessions": 6, "totalSessions": 10,
			"startDate": now.AddDate(0, -1, 0),
		},
		map[string]interface{}{
			"candidateEmail": "amina.yusuf@example.com", "course": "Elderly Care Basics",
			"completedSessions": 12, "totalSessions": 12,
			"startDate": now.AddDate(0, -2, 0),
		},
	}
	if err := client.InsertRecords(ctx, "trainings", trainings); err != nil {
		log.Fatalf("Failed to seed trainings: %v", err)
	}
	fmt.Printf("Inserted %d trainings\n", len(trainings))

	payments := []interface{}{
		map[string]interface{}{
			"candidateEmail": "amina.yusuf@example.com", "amount": 1250.00, "deductions": 62.50,
			"currency": "EUR", "status": "PAID", "paidAt": now.AddDate(0, 0, -10),
		},
		map[string]interface{}{
			"candidateEmail": "maria.santos@example.com", "amount": 980.00, "deductions": 49.00,
			"currency": "EUR", "status": "PAID", "paidAt": now.AddDate(0, 0, -4),
		},
	}
	if err := client.InsertRecords(ctx, "payments", payments); err != nil {
		log.Fatalf("Failed to seed payments: %v", err)
	}
	fmt.Printf("Inserted %d payments\n", len(payments))

	template := &models.ReportTemplate{
		Name:        "Hired Candidates Overview",
		Description: "All hired candidates with contact details and experience",
		Type:        models.DatasetCandidate,
		Fields: []models.TemplateField{
			{Name: "fullName", Label: "Name", ValueType: "string", SourcePath: "fullName", Visible: true, Order: 1},
			{Name: "email", Label: "Email", ValueType: "string", SourcePath: "email", Visible: true, Order: 2},
			{Name: "position", Label: "Position", ValueType: "string", SourcePath: "position", Visible: true, Order: 3},
			{Name: "country", Label: "Country", ValueType: "string", SourcePath: "country", Visible: true, Order: 4},
			{Name: "experience", Label: "Experience (months)", ValueType: "number", SourcePath: "monthsOfExperience", Visible: true, Order: 5},
		},
		Filters: []models.TemplateFilter{
			{Field: "status", Operator: models.OpEquals, Value: "HIRED"},
		},
		SortBy: []models.SortKey{
			{Field: "fullName", Direction: "ASC"},
		},
		GroupBy: []string{"country"},
		Layout: models.TemplateLayout{
			Orientation:  "portrait",
			PageSize:     "A4",
			PrimaryColor: "#0066cc",
			ShowHeader:   true,
			ShowFooter:   true,
		},
	}
	if errs := template.Validate(); len(errs) > 0 {
		log.Fatalf("Sample template is invalid: %v", errs)
	}
	if err := client.CreateTemplate(ctx, template); err != nil {
		log.Fatalf("Failed to seed template: %v", err)
	}
	fmt.Printf("Created template %q (%s)\n", template.Name, template.ID.Hex())

	schedule := models.Schedule{
		Frequency: models.FrequencyWeekly,
		DayOfWeek: 1,
		Time:      models.TimeOfDay{Hour: 8, Minute: 0},
		Timezone:  "Europe/Berlin",
	}
	nextRun, err := services.ComputeNextRun(schedule, now)
	if err != nil {
		log.Fatalf("Failed to compute first run: %v", err)
	}

	scheduled := &models.ScheduledReport{
		Name:       "Weekly Hired Candidates",
		TemplateID: template.ID,
		Schedule:   schedule,
		Recipients: []models.Recipient{
			{UserID: "ops-1", Email: "ops@example.com", DeliveryMethod: models.DeliveryBoth},
		},
		Format:        models.FormatPDF,
		IsActive:      true,
		NextRun:       nextRun,
		RetentionDays: 7,
		CreatedBy:     "seed",
	}
	if err := client.CreateScheduledReport(ctx, scheduled); err != nil {
		log.Fatalf("Failed to seed scheduled report: %v", err)
	}
	fmt.Printf("Created scheduled report %q, first run %s\n", scheduled.Name, nextRun.Format(time.RFC1123))

	fmt.Println("\n=== Seed complete ===")
}
