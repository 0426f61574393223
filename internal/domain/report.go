package domain

import "time"

// MonthBucket aggregates invoice amounts for one calendar month of due
// dates. Month is the first instant of the month in UTC. Paid never
// exceeds Total.
type MonthBucket struct {
	Month time.Time
	Total float64
	Paid  float64
}

// Distribution maps a category (status or priority) to a count.
type Distribution map[string]int

// InvoiceRollup is the invoice slice of the top-line snapshot. Overdue
// counts stored overdue plus pending invoices past due at the snapshot
// instant.
type InvoiceRollup struct {
	PaidRevenue    float64
	PendingRevenue float64
	PendingCount   int
	OverdueCount   int
}

// TopLineStats is the dashboard headline block. All values are derived
// from one snapshot, never stored.
type TopLineStats struct {
	PaidRevenue     float64
	PendingRevenue  float64
	PendingInvoices int
	OverdueInvoices int
	ActiveProjects  int
	ActiveClients   int
	UrgentTasks     int
}
