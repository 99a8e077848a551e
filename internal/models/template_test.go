package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func validTemplate() *ReportTemplate {
	return &ReportTemplate{
		Name: "Hired Candidates",
		Type: DatasetCandidate,
		Fields: []TemplateField{
			{Name: "fullName", Label: "Name", ValueType: "string", SourcePath: "fullName", Visible: true, Order: 1},
			{Name: "email", Label: "Email", ValueType: "string", SourcePath: "email", Visible: true, Order: 2},
		},
	}
}

func TestValidateAcceptsValidTemplate(t *testing.T) {
	assert.Empty(t, validTemplate().Validate())
}

func TestValidateRequiresNameTypeAndFields(t *testing.T) {
	tpl := &ReportTemplate{}
	errs := tpl.Validate()

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["type"])
	assert.True(t, fields["fields"])
}

func TestValidateRejectsDuplicateFieldNames(t *testing.T) {
	tpl := validTemplate()
	tpl.Fields = append(tpl.Fields, TemplateField{Name: "email", Label: "Email 2", SourcePath: "email"})

	errs := tpl.Validate()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "duplicate field name")
}

func TestValidateRequiresSourcePath(t *testing.T) {
	tpl := validTemplate()
	tpl.Fields[0].SourcePath = ""

	errs := tpl.Validate()
	assert.Len(t, errs, 1)
	assert.Equal(t, "fields[0].sourcePath", errs[0].Field)
}

func TestValidateFilterArity(t *testing.T) {
	cases := []struct {
		name   string
		filter TemplateFilter
		valid  bool
	}{
		{"equals scalar", TemplateFilter{Field: "status", Operator: OpEquals, Value: "HIRED"}, true},
		{"equals array", TemplateFilter{Field: "status", Operator: OpEquals, Value: []interface{}{"HIRED"}}, false},
		{"between pair", TemplateFilter{Field: "amount", Operator: OpBetween, Value: []interface{}{10, 20}}, true},
		{"between short", TemplateFilter{Field: "amount", Operator: OpBetween, Value: []interface{}{10}}, false},
		{"between scalar", TemplateFilter{Field: "amount", Operator: OpBetween, Value: 10}, false},
		{"in array", TemplateFilter{Field: "status", Operator: OpIn, Value: []interface{}{"HIRED", "DEPLOYED"}}, true},
		{"in scalar", TemplateFilter{Field: "status", Operator: OpIn, Value: "HIRED"}, false},
		{"not in array", TemplateFilter{Field: "status", Operator: OpNotIn, Value: []interface{}{"REJECTED"}}, true},
		{"between bson pair", TemplateFilter{Field: "amount", Operator: OpBetween, Value: bson.A{10, 20}}, true},
		{"in bson array", TemplateFilter{Field: "status", Operator: OpIn, Value: bson.A{"HIRED"}}, true},
		{"equals bson array", TemplateFilter{Field: "status", Operator: OpEquals, Value: bson.A{"HIRED"}}, false},
		{"unknown operator", TemplateFilter{Field: "status", Operator: "LIKE", Value: "x"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := validTemplate()
			tpl.Filters = []TemplateFilter{tc.filter}
			errs := tpl.Validate()
			if tc.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateSortDirection(t *testing.T) {
	tpl := validTemplate()
	tpl.SortBy = []SortKey{{Field: "fullName", Direction: "ascending"}}

	errs := tpl.Validate()
	assert.Len(t, errs, 1)
	assert.Equal(t, "sortBy[0].direction", errs[0].Field)
}

func TestVisibleFieldsOrderedAndFiltered(t *testing.T) {
	tpl := &ReportTemplate{
		Name: "t",
		Type: DatasetPayment,
		Fields: []TemplateField{
			{Name: "c", Label: "C", SourcePath: "c", Visible: true, Order: 3},
			{Name: "hidden", Label: "H", SourcePath: "h", Visible: false, Order: 1},
			{Name: "a", Label: "A", SourcePath: "a", Visible: true, Order: 1},
			{Name: "b", Label: "B", SourcePath: "b", Visible: true, Order: 1},
		},
	}

	fields := tpl.VisibleFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	// Order ties keep declaration order (stable sort), hidden fields dropped
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
