package condition

import (
	"time"

	"mortgage-backend/internal/domain/condition"
)

type CreateConditionInput struct {
	LoanID        uint64             `json:"-"`
	Type          condition.Type     `json:"condition_type" validate:"required,conditiontype"`
	Title         string             `json:"title" validate:"required,max=200"`
	Description   string             `json:"description,omitempty" validate:"max=4000"`
	Priority      condition.Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	AssigneeID    *string            `json:"assignee_id,omitempty" validate:"omitempty,max=64"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	Comments      string             `json:"comments,omitempty" validate:"max=4000"`
	InternalNotes string             `json:"internal_notes,omitempty" validate:"max=4000"`
	Actor         string             `json:"-"`
}

// UpdateConditionInput is a patch; nil fields are left unchanged. Status is
// accepted only so a caller trying to change it gets a clear error.
type UpdateConditionInput struct {
	Type          *condition.Type     `json:"condition_type,omitempty" validate:"omitempty,conditiontype"`
	Title         *string             `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string             `json:"description,omitempty" validate:"omitempty,max=4000"`
	Priority      *condition.Priority `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
	Comments      *string             `json:"comments,omitempty" validate:"omitempty,max=4000"`
	InternalNotes *string             `json:"internal_notes,omitempty" validate:"omitempty,max=4000"`
	Status        *condition.Status   `json:"status,omitempty"`
	Actor         string              `json:"-"`
}

// Summary counts a loan's conditions by status.
type Summary struct {
	LoanID       uint64                   `json:"loan_id"`
	Total        int                      `json:"total"`
	ByStatus     map[condition.Status]int `json:"by_status"`
	Outstanding  int64                    `json:"outstanding"`
	AllSatisfied bool                     `json:"all_satisfied"`
}
