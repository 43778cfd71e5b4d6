package todo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	tests := []Task{
		{Title: "A"},
		{Title: "A", Description: "d", DueDate: "13/09/2025", IsCompleted: true},
		{ID: 7, Title: "A", DueDate: "29/02/2024"},
	}
	for _, task := range tests {
		assert.NoError(t, Validate(task), "%+v", task)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		task  Task
		field string
	}{
		{"empty title", Task{Title: ""}, "title"},
		{"iso date", Task{Title: "A", DueDate: "2025-09-13"}, "dueDate"},
		{"month out of range", Task{Title: "A", DueDate: "13/13/2025"}, "dueDate"},
		{"not a calendar date", Task{Title: "A", DueDate: "31/02/2025"}, "dueDate"},
		{"negative id", Task{ID: -1, Title: "A"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.task)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want *ValidationError, got %T", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Contains(t, ve.Error(), "invalid task")
		})
	}
}

func TestValidate_WhitespaceTitleAfterNormalize(t *testing.T) {
	assert.Error(t, Validate(Normalize(Task{Title: "   "})))
}
