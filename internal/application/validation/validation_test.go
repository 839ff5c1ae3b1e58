package validation

import (
	"testing"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	v := New()
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	tests := []struct {
		name  string
		shape entity.Shape
		field string
	}{
		{"valid class", &entity.Class{Name: "Class 41", Number: 41}, ""},
		{"class without number", &entity.Class{Name: "Class 41"}, "number"},
		{"class ends before start", &entity.Class{Name: "c", Number: 1, StartDate: &start, EndDate: &end}, "endDate"},
		{"bad currency", &entity.PricingPlan{Name: "Basic", Price: 10, Currency: "EURO"}, "currency"},
		{"rating out of range", &entity.Testimonial{Author: "Kim", Quote: "great", Rating: 6}, "rating"},
		{"lead email", &entity.Lead{Name: "Kim", Email: "not-an-email"}, "email"},
		{"registration class", &entity.Registration{Name: "Kim", Email: "kim@example.com"}, "classId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Shape(v, tt.shape)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *entity.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	assert.True(t, entity.IsValidation(Shape(v, nil)))
}
