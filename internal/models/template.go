package models

import (
	"fmt"
	"sort"
	"time"

	"staffhub-report/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DatasetType identifies which domain dataset a template reads from
type DatasetType string

const (
	DatasetCandidate DatasetType = "CANDIDATE"
	DatasetTraining  DatasetType = "TRAINING"
	DatasetPayment   DatasetType = "PAYMENT"
	DatasetAnalytics DatasetType = "ANALYTICS"
	DatasetCustom    DatasetType = "CUSTOM"
)

// ReportFormat is the output format of a generated report
type ReportFormat string

const (
	FormatPDF   ReportFormat = "PDF"
	FormatExcel ReportFormat = "EXCEL"
	FormatCSV   ReportFormat = "CSV"
	FormatJSON  ReportFormat = "JSON"
)

// FilterOperator is a predicate applied to a record field during generation
type FilterOperator string

const (
	OpEquals      FilterOperator = "EQUALS"
	OpNotEquals   FilterOperator = "NOT_EQUALS"
	OpContains    FilterOperator = "CONTAINS"
	OpNotContains FilterOperator = "NOT_CONTAINS"
	OpGreaterThan FilterOperator = "GREATER_THAN"
	OpLessThan    FilterOperator = "LESS_THAN"
	OpBetween     FilterOperator = "BETWEEN"
	OpIn          FilterOperator = "IN"
	OpNotIn       FilterOperator = "NOT_IN"
)

// TemplateField describes one column of a report
type TemplateField struct {
	Name          string `json:"name" bson:"name"`
	Label         string `json:"label" bson:"label"`
	ValueType     string `json:"valueType" bson:"valueType"` // string, number, currency, percentage, date, boolean
	SourcePath    string `json:"sourcePath" bson:"sourcePath"`
	DisplayFormat string `json:"displayFormat,omitempty" bson:"displayFormat,omitempty"`
	Aggregation   string `json:"aggregation,omitempty" bson:"aggregation,omitempty"`
	Visible       bool   `json:"visible" bson:"visible"`
	Order         int    `json:"order" bson:"order"`
}

// TemplateFilter is a single filter predicate
type TemplateFilter struct {
	Field    string         `json:"field" bson:"field"`
	Operator FilterOperator `json:"operator" bson:"operator"`
	Value    interface{}    `json:"value" bson:"value"`
}

// SortKey is one entry of a stable multi-key sort; earlier keys take priority
type SortKey struct {
	Field     string `json:"field" bson:"field"`
	Direction string `json:"direction" bson:"direction"` // ASC | DESC
}

// TemplateLayout holds styling hints used by the PDF and Excel renderers
type TemplateLayout struct {
	Orientation  string `json:"orientation,omitempty" bson:"orientation,omitempty"` // portrait | landscape
	PageSize     string `json:"pageSize,omitempty" bson:"pageSize,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty" bson:"primaryColor,omitempty"` // hex, e.g. #0066cc
	ShowHeader   bool   `json:"showHeader" bson:"showHeader"`
	ShowFooter   bool   `json:"showFooter" bson:"showFooter"`
}

// ReportTemplate is the reusable definition of what a report contains
type ReportTemplate struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" binding:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Type        DatasetType        `json:"type" bson:"type" binding:"required"`
	Fields      []TemplateField    `json:"fields" bson:"fields"`
	Filters     []TemplateFilter   `json:"filters,omitempty" bson:"filters,omitempty"`
	SortBy      []SortKey          `json:"sortBy,omitempty" bson:"sortBy,omitempty"`
	GroupBy     []string           `json:"groupBy,omitempty" bson:"groupBy,omitempty"`
	Layout      TemplateLayout     `json:"layout,omitempty" bson:"layout,omitempty"`
	CreatedBy   string             `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ValidationError describes one problem found while validating a template
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the template's structure. Validation is advisory: the
// generation engine does not re-validate beyond best-effort path resolution.
func (t *ReportTemplate) Validate() []ValidationError {
	var errs []ValidationError

	if t.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "template name is required"})
	}
	if t.Type == "" {
		errs = append(errs, ValidationError{Field: "type", Message: "dataset type is required"})
	}
	if len(t.Fields) == 0 {
		errs = append(errs, ValidationError{Field: "fields", Message: "template must define at least one field"})
	}

	seen := make(map[string]bool)
	for i, f := range t.Fields {
		if f.Name == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("fields[%d].name", i),
				Message: "field name is required",
			})
			continue
		}
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("fields[%d].name", i),
				Message: fmt.Sprintf("duplicate field name %q", f.Name),
			})
		}
		seen[f.Name] = true
		if f.SourcePath == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("fields[%d].sourcePath", i),
				Message: "field source path is required",
			})
		}
	}

	for i, flt := range t.Filters {
		errs = append(errs, validateFilter(i, flt)...)
	}

	for i, s := range t.SortBy {
		if s.Direction != "ASC" && s.Direction != "DESC" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("sortBy[%d].direction", i),
				Message: fmt.Sprintf("direction must be ASC or DESC, got %q", s.Direction),
			})
		}
	}

	return errs
}

func validateFilter(i int, f TemplateFilter) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("filters[%d]", i)

	if f.Field == "" {
		errs = append(errs, ValidationError{Field: field + ".field", Message: "filter field is required"})
	}

	switch f.Operator {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpGreaterThan, OpLessThan:
		if _, ok := utils.AsSlice(f.Value); ok {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: fmt.Sprintf("operator %s requires a scalar value", f.Operator),
			})
		}
	case OpBetween:
		vals, ok := utils.AsSlice(f.Value)
		if !ok || len(vals) != 2 {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: "BETWEEN requires a 2-element array value",
			})
		}
	case OpIn, OpNotIn:
		if _, ok := utils.AsSlice(f.Value); !ok {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: fmt.Sprintf("operator %s requires an array value", f.Operator),
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   field + ".operator",
			Message: fmt.Sprintf("unknown operator %q", f.Operator),
		})
	}

	return errs
}

// VisibleFields returns the visible fields ordered by their Order value.
// The sort is stable so fields sharing an Order keep their declared order.
func (t *ReportTemplate) VisibleFields() []TemplateField {
	fields := make([]TemplateField, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.Visible {
			fields = append(fields, f)
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})
	return fields
}
