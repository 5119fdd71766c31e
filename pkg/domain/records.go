package domain

import "time"

// Lead status values, in the order the status chart displays them.
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadQualified = "qualified"
	LeadWon       = "won"
	LeadLost      = "lost"
)

// Project status values, in display order.
const (
	ProjectPlanned   = "planned"
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
)

// Payment status values.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// Lead is a prospective customer tracked by the sales pipeline.
type Lead struct {
	ID        string    `json:"id" yaml:"id" mapstructure:"id"`
	Name      string    `json:"name" yaml:"name" mapstructure:"name"`
	Status    string    `json:"status" yaml:"status" mapstructure:"status"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" mapstructure:"created_at"`
}

// Project is a unit of delivered work.
type Project struct {
	ID     string  `json:"id" yaml:"id" mapstructure:"id"`
	Name   string  `json:"name" yaml:"name" mapstructure:"name"`
	Status string  `json:"status" yaml:"status" mapstructure:"status"`
	Budget float64 `json:"budget" yaml:"budget" mapstructure:"budget"`
}

// Payment is money received (or expected) from a customer.
type Payment struct {
	ID     string    `json:"id" yaml:"id" mapstructure:"id"`
	Amount float64   `json:"amount" yaml:"amount" mapstructure:"amount"`
	Status string    `json:"status" yaml:"status" mapstructure:"status"`
	PaidAt time.Time `json:"paid_at" yaml:"paid_at" mapstructure:"paid_at"`
}

// Snapshot is the full set of records a refresh cycle reads.
// A nil or partially filled snapshot is valid and renders empty charts.
type Snapshot struct {
	Leads    []Lead    `json:"leads"`
	Projects []Project `json:"projects"`
	Payments []Payment `json:"payments"`
}

// Clone returns a deep copy so callers can hand snapshots across goroutines.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	return &Snapshot{
		Leads:    append([]Lead(nil), s.Leads...),
		Projects: append([]Project(nil), s.Projects...),
		Payments: append([]Payment(nil), s.Payments...),
	}
}
