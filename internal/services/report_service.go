package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"staffhub-report/internal/models"
	"staffhub-report/internal/utils"

	"github.com/google/uuid"
)

// groupKeySeparator joins the group-by field values into a composite key
const groupKeySeparator = " | "

// TemplateStore loads report templates. Implemented by database.MongoClient.
type TemplateStore interface {
	GetTemplate(ctx context.Context, id string) (*models.ReportTemplate, error)
}

// RecordGroup is one partition of a grouped report, in first-seen order
type RecordGroup struct {
	Key     string
	Records []models.Record
}

// ReportData is the filtered, sorted, optionally grouped dataset handed to
// the renderers
type ReportData struct {
	Template    *models.ReportTemplate
	Rows        []models.Record
	Groups      []RecordGroup
	Grouped     bool
	Parameters  models.Parameters
	GeneratedAt time.Time
}

// ReportService is the report generation engine: fetch, filter, sort, group,
// render
type ReportService struct {
	templates TemplateStore
	datasets  map[models.DatasetType]DatasetFetcher
	pdf       *PDFService
	excel     *ExcelService
}

// NewReportService creates a new report generation engine
func NewReportService(templates TemplateStore) *ReportService {
	return &ReportService{
		templates: templates,
		datasets:  make(map[models.DatasetType]DatasetFetcher),
		pdf:       NewPDFService(),
		excel:     NewExcelService(),
	}
}

// RegisterDataset binds a dataset type to its fetcher. New dataset types are
// added here without modifying the engine's dispatch logic.
func (s *ReportService) RegisterDataset(t models.DatasetType, fetcher DatasetFetcher) {
	s.datasets[t] = fetcher
}

// Generate runs the full pipeline for one template and returns the rendered
// artifact. An empty format defaults to JSON.
func (s *ReportService) Generate(ctx context.Context, templateID string, params models.Parameters, format models.ReportFormat) (*models.Artifact, error) {
	if format == "" {
		format = models.FormatJSON
	}
	switch format {
	case models.FormatPDF, models.FormatExcel, models.FormatCSV, models.FormatJSON:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	template, err := s.templates.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}

	fetcher, ok := s.datasets[template.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDataset, template.Type)
	}

	records, err := fetcher(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s dataset: %w", template.Type, err)
	}

	records = ApplyFilters(records, template.Filters)
	SortRecords(records, template.SortBy)

	data := &ReportData{
		Template:    template,
		Rows:        records,
		Parameters:  params,
		GeneratedAt: time.Now(),
	}
	if len(template.GroupBy) > 0 {
		data.Groups = GroupRecords(records, template.GroupBy)
		data.Grouped = true
	}

	var (
		output      []byte
		contentType string
		extension   string
	)
	switch format {
	case models.FormatPDF:
		output, err = s.pdf.Render(data)
		contentType, extension = "application/pdf", "pdf"
	case models.FormatExcel:
		output, err = s.excel.Render(data)
		contentType, extension = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case models.FormatCSV:
		output, err = RenderCSV(data)
		contentType, extension = "text/csv", "csv"
	case models.FormatJSON:
		output, err = RenderJSON(data)
		contentType, extension = "application/json", "json"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", format, err)
	}

	return &models.Artifact{
		FileName:     fmt.Sprintf("%s-%s.%s", slugify(template.Name), uuid.New().String(), extension),
		Format:       format,
		ContentType:  contentType,
		Data:         output,
		TemplateName: template.Name,
		RecordCount:  len(records),
		GeneratedAt:  data.GeneratedAt,
	}, nil
}

// --- Filter ---

// ApplyFilters keeps the records matching every filter predicate. Missing
// paths fail every predicate except NOT_EQUALS and NOT_CONTAINS: absence
// does not satisfy a positive match.
func ApplyFilters(records []models.Record, filters []models.TemplateFilter) []models.Record {
	if len(filters) == 0 {
		return records
	}
	out := make([]models.Record, 0, len(records))
	for _, rec := range records {
		keep := true
		for _, f := range filters {
			if !matchFilter(rec, f) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

func matchFilter(rec models.Record, f models.TemplateFilter) bool {
	value, ok := utils.Resolve(rec, f.Field)
	if !ok || value == nil {
		return f.Operator == models.OpNotEquals || f.Operator == models.OpNotContains
	}

	switch f.Operator {
	case models.OpEquals:
		return equalValues(value, f.Value)
	case models.OpNotEquals:
		return !equalValues(value, f.Value)
	case models.OpContains:
		return containsValue(value, f.Value)
	case models.OpNotContains:
		return !containsValue(value, f.Value)
	case models.OpGreaterThan:
		return compareValues(value, f.Value) > 0
	case models.OpLessThan:
		return compareValues(value, f.Value) < 0
	case models.OpBetween:
		bounds, ok := utils.AsSlice(f.Value)
		if !ok || len(bounds) != 2 {
			return false
		}
		return compareValues(value, bounds[0]) >= 0 && compareValues(value, bounds[1]) <= 0
	case models.OpIn:
		return inValues(value, f.Value)
	case models.OpNotIn:
		return !inValues(value, f.Value)
	}
	return false
}

func equalValues(a, b interface{}) bool {
	if fa, ok := utils.ToFloat(a); ok {
		if fb, ok := utils.ToFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func containsValue(value, needle interface{}) bool {
	return strings.Contains(
		strings.ToLower(fmt.Sprintf("%v", value)),
		strings.ToLower(fmt.Sprintf("%v", needle)),
	)
}

func inValues(value, set interface{}) bool {
	items, ok := utils.AsSlice(set)
	if !ok {
		return false
	}
	for _, item := range items {
		if equalValues(value, item) {
			return true
		}
	}
	return false
}

// compareValues orders two values: numerically when both coerce, by time
// when both parse as times, otherwise lexically. nil sorts before non-nil.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if fa, ok := utils.ToFloat(a); ok {
		if fb, ok := utils.ToFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := utils.ToTime(a); ok {
		if tb, ok := utils.ToTime(b); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

// --- Sort ---

// SortRecords applies a stable multi-key sort in place. Earlier keys take
// priority; ties fall through to the next key.
func SortRecords(records []models.Record, keys []models.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, key := range keys {
			va, _ := utils.Resolve(records[i], key.Field)
			vb, _ := utils.Resolve(records[j], key.Field)
			cmp := compareValues(va, vb)
			if cmp == 0 {
				continue
			}
			if key.Direction == "DESC" {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// --- Group ---

// GroupRecords partitions records by the composite value of the group-by
// fields, preserving first-seen group order and record order within groups
func GroupRecords(records []models.Record, groupBy []string) []RecordGroup {
	index := make(map[string]int)
	var groups []RecordGroup

	for _, rec := range records {
		parts := make([]string, len(groupBy))
		for i, field := range groupBy {
			if v, ok := utils.Resolve(rec, field); ok {
				parts[i] = fmt.Sprintf("%v", v)
			}
		}
		key := strings.Join(parts, groupKeySeparator)

		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, RecordGroup{Key: key})
		}
		groups[idx].Records = append(groups[idx].Records, rec)
	}
	return groups
}

// --- CSV / JSON rendering ---

// RenderCSV writes a header line plus one line per record; grouped data gets
// a group label line before its member rows
func RenderCSV(data *ReportData) ([]byte, error) {
	fields := data.Template.VisibleFields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("template %q has no visible fields", data.Template.Name)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Label
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	writeRow := func(rec models.Record) error {
		row := make([]string, len(fields))
		for i, f := range fields {
			v, _ := utils.Resolve(rec, f.SourcePath)
			row[i] = utils.FormatValue(v, f.ValueType)
		}
		return w.Write(row)
	}

	if data.Grouped {
		for _, group := range data.Groups {
			label := make([]string, len(fields))
			label[0] = group.Key
			if err := w.Write(label); err != nil {
				return nil, err
			}
			for _, rec := range group.Records {
				if err := writeRow(rec); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for _, rec := range data.Rows {
			if err := writeRow(rec); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderJSON produces the structured envelope with template metadata, the
// (possibly grouped) data, and a summary block
func RenderJSON(data *ReportData) ([]byte, error) {
	fields := data.Template.VisibleFields()

	fieldNames := make([]string, len(fields))
	for i, f := range fields {
		fieldNames[i] = f.Name
	}

	project := func(rec models.Record) map[string]interface{} {
		row := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			v, ok := utils.Resolve(rec, f.SourcePath)
			if !ok {
				row[f.Name] = nil
				continue
			}
			row[f.Name] = v
		}
		return row
	}

	var payload interface{}
	if data.Grouped {
		groups := make([]models.ReportGroup, len(data.Groups))
		for i, g := range data.Groups {
			items := make([]map[string]interface{}, len(g.Records))
			for j, rec := range g.Records {
				items[j] = project(rec)
			}
			groups[i] = models.ReportGroup{Group: g.Key, Items: items}
		}
		payload = groups
	} else {
		rows := make([]map[string]interface{}, len(data.Rows))
		for i, rec := range data.Rows {
			rows[i] = project(rec)
		}
		payload = rows
	}

	envelope := models.ReportEnvelope{
		Template: models.EnvelopeTemplate{
			Name:        data.Template.Name,
			Type:        string(data.Template.Type),
			GeneratedAt: data.GeneratedAt,
			Parameters:  data.Parameters,
		},
		Data: payload,
		Summary: models.EnvelopeSummary{
			TotalRecords: len(data.Rows),
			Fields:       fieldNames,
		},
	}
	return json.MarshalIndent(envelope, "", "  ")
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "report"
	}
	return slug
}
