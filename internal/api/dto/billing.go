package dto

import "time"

// RecurringBillingRunItem reports the outcome for a single fee definition
// within one billing run
type RecurringBillingRunItem struct {
	FeeID          string   `json:"fee_id"`
	InvoiceIDs     []string `json:"invoice_ids,omitempty"`
	PeriodsBilled  int      `json:"periods_billed"`
	PeriodsSkipped int      `json:"periods_skipped"`
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
}

// RecurringBillingRunResponse summarizes one invoice generation run
type RecurringBillingRunResponse struct {
	RunAt         time.Time                  `json:"run_at"`
	Items         []*RecurringBillingRunItem `json:"items"`
	TotalFees     int                        `json:"total_fees"`
	TotalInvoices int                        `json:"total_invoices"`
	TotalSkipped  int                        `json:"total_skipped"`
	TotalFailed   int                        `json:"total_failed"`
}

// OverdueRunResponse summarizes one overdue marking run
type OverdueRunResponse struct {
	RunAt       time.Time `json:"run_at"`
	TotalMarked int       `json:"total_marked"`
	TotalFailed int       `json:"total_failed"`
}
