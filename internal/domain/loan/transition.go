package loan

import "time"

// Table: loan_status_transitions. Rows are append-only.
type StatusTransition struct {
	ID uint64 `gorm:"primaryKey;column:id" json:"-"`
	// Public identifier (32-char lowercase hex)
	EventID    string    `gorm:"column:event_id;type:char(32);not null;uniqueIndex:ux_transitions_event_id" json:"event_id"`
	LoanID     uint64    `gorm:"column:loan_id;not null;index:idx_transitions_loan" json:"loan_id"`
	FromStatus *Status   `gorm:"column:from_status;size:32" json:"from_status"`
	ToStatus   Status    `gorm:"column:to_status;size:32;not null" json:"to_status"`
	ActorID    string    `gorm:"column:actor_id;size:64;not null" json:"actor_id"`
	Reason     string    `gorm:"column:reason;type:text" json:"reason,omitempty"`
	Notes      string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ChangedAt  time.Time `gorm:"column:changed_at;not null;index:idx_transitions_changed_at" json:"changed_at"`
}

func (StatusTransition) TableName() string { return "loan_status_transitions" }

// IsInitial reports whether this is the creation record.
func (t StatusTransition) IsInitial() bool { return t.FromStatus == nil }
