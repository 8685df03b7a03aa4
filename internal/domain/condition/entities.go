package condition

import (
	"cmp"
	"slices"
	"time"
)

type Type string

const (
	TypeIncomeVerification     Type = "INCOME_VERIFICATION"
	TypeEmploymentVerification Type = "EMPLOYMENT_VERIFICATION"
	TypeAppraisal              Type = "APPRAISAL"
	TypeTitleWork              Type = "TITLE_WORK"
	TypeInsurance              Type = "INSURANCE"
	TypeBankStatements         Type = "BANK_STATEMENTS"
	TypeTaxReturns             Type = "TAX_RETURNS"
	TypeCreditExplanation      Type = "CREDIT_EXPLANATION"
	TypeGiftLetter             Type = "GIFT_LETTER"
	TypeSurvey                 Type = "SURVEY"
	TypeHOADocuments           Type = "HOA_DOCUMENTS"
	TypeOther                  Type = "OTHER"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncomeVerification, TypeEmploymentVerification, TypeAppraisal, TypeTitleWork,
		TypeInsurance, TypeBankStatements, TypeTaxReturns, TypeCreditExplanation,
		TypeGiftLetter, TypeSurvey, TypeHOADocuments, TypeOther:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var priorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// Rank orders priorities; unknown values rank 0.
func (p Priority) Rank() int { return priorityRank[p] }

func (p Priority) Less(o Priority) bool { return p.Rank() < o.Rank() }

// Table: loan_conditions
type Condition struct {
	ID             uint64     `gorm:"primaryKey;column:id" json:"id"`
	LoanID         uint64     `gorm:"column:loan_id;not null;index:idx_conditions_loan" json:"loan_id"`
	Type           Type       `gorm:"column:condition_type;size:32;not null" json:"condition_type"`
	Title          string     `gorm:"column:title;size:200;not null" json:"title"`
	Description    string     `gorm:"column:description;type:text" json:"description,omitempty"`
	Priority       Priority   `gorm:"column:priority;size:10;not null" json:"priority"`
	Status         Status     `gorm:"column:status;size:16;not null;index:idx_conditions_status" json:"status"`
	AssigneeID     *string    `gorm:"column:assignee_id;size:64;index" json:"assignee_id,omitempty"`
	DueDate        *time.Time `gorm:"column:due_date;index:idx_conditions_due" json:"due_date,omitempty"`
	CompletedDate  *time.Time `gorm:"column:completed_date" json:"completed_date,omitempty"`
	Comments       string     `gorm:"column:comments;type:text" json:"comments,omitempty"`
	InternalNotes  string     `gorm:"column:internal_notes;type:text" json:"-"`
	CreatedBy      string     `gorm:"column:created_by;size:64;not null" json:"created_by"`
	LastModifiedBy string     `gorm:"column:last_modified_by;size:64" json:"last_modified_by,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Condition) TableName() string { return "loan_conditions" }

// IsOverdue: has a due date before now and is still open.
func (c *Condition) IsOverdue(now time.Time) bool {
	return c.DueDate != nil && c.DueDate.Before(now) && c.Status.IsActive()
}

// AppendComment adds text on its own line.
func (c *Condition) AppendComment(text string) {
	if text == "" {
		return
	}
	if c.Comments == "" {
		c.Comments = text
		return
	}
	c.Comments += "\n" + text
}

// AllSatisfied is true iff every condition is completed or waived. An empty
// set is satisfied.
func AllSatisfied(cs []Condition) bool {
	for i := range cs {
		if !cs[i].Status.IsSatisfied() {
			return false
		}
	}
	return true
}

// SortByPriority orders most urgent first, ties by id.
func SortByPriority(cs []Condition) {
	slices.SortStableFunc(cs, func(a, b Condition) int {
		if a.Priority != b.Priority {
			return b.Priority.Rank() - a.Priority.Rank()
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
