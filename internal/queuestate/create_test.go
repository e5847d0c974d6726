package queuestate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuely/queue-service/internal/domain"
)

func TestNewQueue_Defaults(t *testing.T) {
	q, err := NewQueue("admin-1", CreateInput{
		Name:        "  Doctor Consultation ",
		Description: " Walk-in ",
		Category:    domain.CategoryHealth,
	})
	require.NoError(t, err)

	assert.Equal(t, "Doctor Consultation", q.Name)
	assert.Equal(t, "Walk-in", q.Description)
	assert.Equal(t, DefaultCapacity, q.Capacity)
	assert.Equal(t, domain.QueueStatusActive, q.Status)
	assert.Equal(t, "admin-1", q.CreatedBy)
	assert.Empty(t, q.Members)
	assert.Empty(t, q.Served)
	assert.Zero(t, q.Stats)
}

func TestNewQueue_Validation(t *testing.T) {
	valid := CreateInput{Name: "Bank", Description: "Tellers", Category: domain.CategoryBanking, Capacity: 20}

	tests := []struct {
		name   string
		mutate func(in *CreateInput)
		msg    string
	}{
		{name: "missing name", mutate: func(in *CreateInput) { in.Name = "   " }, msg: "name is required"},
		{name: "long name", mutate: func(in *CreateInput) { in.Name = strings.Repeat("n", 51) }, msg: "name exceeds"},
		{name: "missing description", mutate: func(in *CreateInput) { in.Description = "" }, msg: "description is required"},
		{name: "long description", mutate: func(in *CreateInput) { in.Description = strings.Repeat("d", 26) }, msg: "description exceeds"},
		{name: "unknown category", mutate: func(in *CreateInput) { in.Category = "sports" }, msg: "unknown category"},
		{name: "empty category", mutate: func(in *CreateInput) { in.Category = "" }, msg: "unknown category"},
		{name: "capacity too small", mutate: func(in *CreateInput) { in.Capacity = 9 }, msg: "capacity"},
		{name: "capacity too large", mutate: func(in *CreateInput) { in.Capacity = 201 }, msg: "capacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := NewQueue("admin-1", in)
			require.ErrorIs(t, err, ErrInvalidQueue)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewQueue_CapacityBounds(t *testing.T) {
	for _, capacity := range []int{MinCapacity, MaxCapacity} {
		q, err := NewQueue("admin-1", CreateInput{Name: "Q", Description: "D", Category: domain.CategoryOther, Capacity: capacity})
		require.NoError(t, err)
		assert.Equal(t, capacity, q.Capacity)
	}
}
