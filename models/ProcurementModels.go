package models

import "time"

// RFQ statuses. Open → Received → Evaluated → Closed; Closed is terminal and
// is also set by the due-date expiry job.
const (
	RFQStatusOpen      = "Open"
	RFQStatusReceived  = "Received"
	RFQStatusEvaluated = "Evaluated"
	RFQStatusClosed    = "Closed"
)

// Quote statuses. Submitted → Under Review → {Accepted, Rejected}.
const (
	QuoteStatusSubmitted   = "Submitted"
	QuoteStatusUnderReview = "Under Review"
	QuoteStatusAccepted    = "Accepted"
	QuoteStatusRejected    = "Rejected"
)

// Supplier represents the suppliers table. Rating is 1-5 and feeds the
// quality component of quote scoring.
type Supplier struct {
	ID            int       `json:"id" example:"1"`
	Name          string    `json:"name" example:"CableTech (Pty) Ltd"`
	ContactPerson string    `json:"contact_person" example:"Anita Pillay"`
	Email         string    `json:"email" example:"sales@cabletech.example.com"`
	Phone         string    `json:"phone" example:"0115550123"`
	Address       string    `json:"address" example:"4 Industry Rd, Midrand"`
	Rating        float64   `json:"rating" example:"4.5"`
	PaymentTerms  string    `json:"payment_terms" example:"30 days"`
	Status        string    `json:"status" example:"Active"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// RFQ represents the rfqs table. The item list is a snapshot of the
// qualifying BOQ items at generation time and is immutable afterwards.
type RFQ struct {
	ID                   int       `json:"id" example:"1"`
	RFQNumber            string    `json:"rfq_number" example:"RFQ-20240115-0042"`
	ProjectID            int       `json:"project_id" example:"1"`
	ProjectName          string    `json:"project_name,omitempty" example:"Lawley Phase 2"`
	SupplierID           int       `json:"supplier_id" example:"1"`
	SupplierName         string    `json:"supplier_name,omitempty" example:"CableTech (Pty) Ltd"`
	RFQDate              time.Time `json:"rfq_date" example:"2024-01-15T10:30:00Z"`
	DueDate              time.Time `json:"due_date" example:"2024-01-29T10:30:00Z"`
	Status               string    `json:"status" example:"Open"`
	TotalEstimatedAmount float64   `json:"total_estimated_amount" example:"18500"`
	PortalToken          string    `json:"portal_token,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	SupplierPortalLink   string    `json:"supplier_portal_link,omitempty" example:"https://portal.example.com/rfq/550e8400"`
	Items                []RFQItem `json:"items,omitempty"`
	CreatedBy            string    `json:"created_by,omitempty" example:"John Doe"`
}

// RFQItem is one line of an RFQ, copied from a BOQ item at generation time.
type RFQItem struct {
	ID             int     `json:"id" example:"1"`
	RFQID          int     `json:"rfq_id" example:"1"`
	BOQItemID      int     `json:"boq_item_id" example:"1"`
	ItemCode       string  `json:"item_code" example:"FIB-ADSS-96"`
	Description    string  `json:"description" example:"ADSS Fibre Cable 96F"`
	Specification  string  `json:"specification" example:"96 core, span 120m"`
	UoM            string  `json:"uom" example:"m"`
	Quantity       int     `json:"quantity" example:"600"`
	EstimatedPrice float64 `json:"estimated_price" example:"18.50"`
}

// Quote represents the quotes table. One quote per responding supplier per
// RFQ; Score is computed at comparison time, never stored.
type Quote struct {
	ID            int         `json:"id" example:"1"`
	RFQID         int         `json:"rfq_id" example:"1"`
	SupplierID    int         `json:"supplier_id" example:"1"`
	SupplierName  string      `json:"supplier_name,omitempty" example:"CableTech (Pty) Ltd"`
	SubmittedDate time.Time   `json:"submitted_date" example:"2024-01-18T09:00:00Z"`
	ValidUntil    DateOnly    `json:"valid_until" example:"2024-02-18"`
	LeadTimeDays  int         `json:"lead_time_days" example:"14"`
	PaymentTerms  string      `json:"payment_terms" example:"30 days"`
	TotalAmount   float64     `json:"total_amount" example:"17900"`
	Status        string      `json:"status" example:"Submitted"`
	Notes         string      `json:"notes,omitempty" example:"Price includes delivery"`
	Items         []QuoteItem `json:"items,omitempty"`
	Score         float64     `json:"score,omitempty" example:"82.5"`
}

// QuoteItem prices one RFQ item within a quote.
type QuoteItem struct {
	ID         int     `json:"id" example:"1"`
	QuoteID    int     `json:"quote_id" example:"1"`
	RFQItemID  int     `json:"rfq_item_id" example:"1"`
	UnitPrice  float64 `json:"unit_price" example:"17.90"`
	TotalPrice float64 `json:"total_price" example:"10740"`
}

// QuoteSubmission is the request body for the supplier portal submit
// endpoint.
type QuoteSubmission struct {
	ValidUntil   DateOnly              `json:"valid_until" example:"2024-02-18"`
	LeadTimeDays int                   `json:"lead_time_days" binding:"required" example:"14"`
	PaymentTerms string                `json:"payment_terms" example:"30 days"`
	Notes        string                `json:"notes"`
	Items        []QuoteSubmissionItem `json:"items" binding:"required,min=1"`
}

// QuoteSubmissionItem carries a supplier's price for one RFQ item.
type QuoteSubmissionItem struct {
	RFQItemID int     `json:"rfq_item_id" binding:"required" example:"1"`
	UnitPrice float64 `json:"unit_price" binding:"required" example:"17.90"`
}
