package models

import (
	"time"

	"gorm.io/gorm"
)

// GORM-compatible models used for schema migration. Handlers read and write
// through database/sql; these definitions exist so AutoMigrate keeps the
// tables in step with the structs above.

// UserGorm represents the users table with GORM tags
type UserGorm struct {
	ID          uint           `gorm:"primaryKey;column:id" json:"id"`
	EmployeeId  string         `gorm:"column:employee_id;uniqueIndex" json:"employee_id"`
	Email       string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"column:password;not null" json:"password"`
	FirstName   string         `gorm:"column:first_name;not null" json:"first_name"`
	LastName    string         `gorm:"column:last_name;not null" json:"last_name"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	FirstAccess *time.Time     `gorm:"column:first_access" json:"first_access,omitempty"`
	LastAccess  *time.Time     `gorm:"column:last_access" json:"last_access,omitempty"`
	ProfilePic  string         `gorm:"column:profile_picture" json:"profile_picture"`
	IsAdmin     bool           `gorm:"column:is_admin;default:false" json:"is_admin"`
	Address     string         `gorm:"column:address" json:"address"`
	City        string         `gorm:"column:city" json:"city"`
	State       string         `gorm:"column:state" json:"state"`
	Country     string         `gorm:"column:country" json:"country"`
	ZipCode     string         `gorm:"column:zip_code" json:"zip_code"`
	PhoneNo     string         `gorm:"column:phone_no" json:"phone_no"`
	RoleID      int            `gorm:"column:role_id;not null" json:"role_id"`
	Suspended   bool           `gorm:"column:suspended;default:false" json:"suspended"`
	FCMToken    string         `gorm:"column:fcm_token" json:"fcm_token,omitempty"`
	ResetToken       *string    `gorm:"column:reset_token" json:"-"`
	ResetTokenExpiry *time.Time `gorm:"column:reset_token_expiry" json:"-"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for UserGorm
func (UserGorm) TableName() string {
	return "users"
}

// SessionGorm represents the session table with GORM tags
type SessionGorm struct {
	ID                    uint       `gorm:"primaryKey;column:id" json:"id"`
	UserID                int        `gorm:"column:user_id;not null" json:"user_id"`
	SessionID             string     `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`
	HostName              string     `gorm:"column:host_name;not null" json:"host_name"`
	IPAddress             string     `gorm:"column:ip_address;not null" json:"ip_address"`
	Timestamp             time.Time  `gorm:"column:timestp;not null" json:"timestp"`
	ExpiresAt             time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	RefreshToken          *string    `gorm:"column:refresh_token" json:"-"`
	RefreshTokenExpiresAt *time.Time `gorm:"column:refresh_token_expires_at" json:"-"`
}

// TableName specifies the table name for SessionGorm
func (SessionGorm) TableName() string {
	return "session"
}

// RoleGorm represents the roles table with GORM tags
type RoleGorm struct {
	RoleID   uint   `gorm:"primaryKey;column:role_id" json:"role_id"`
	RoleName string `gorm:"column:role_name;uniqueIndex;not null" json:"role_name"`
}

// TableName specifies the table name for RoleGorm
func (RoleGorm) TableName() string {
	return "roles"
}

// SettingGorm represents the settings table with GORM tags
type SettingGorm struct {
	UserID                int  `gorm:"primaryKey;column:user_id" json:"user_id"`
	AllowMultipleSessions bool `gorm:"column:allow_multiple_sessions;default:true" json:"allow_multiple_sessions"`
}

// TableName specifies the table name for SettingGorm
func (SettingGorm) TableName() string {
	return "settings"
}

// ActivityLogGorm represents the activity_logs table with GORM tags
type ActivityLogGorm struct {
	ID                uint           `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UserName          string         `gorm:"column:user_name;not null" json:"user_name"`
	HostName          string         `gorm:"column:host_name;not null" json:"host_name"`
	EventContext      string         `gorm:"column:event_context;not null" json:"event_context"`
	IPAddress         string         `gorm:"column:ip_address;not null" json:"ip_address"`
	Description       string         `gorm:"column:description;not null" json:"description"`
	EventName         string         `gorm:"column:event_name;not null" json:"event_name"`
	AffectedUserName  string         `gorm:"column:affected_user_name" json:"affected_user_name"`
	AffectedUserEmail string         `gorm:"column:affected_user_email" json:"affected_user_email"`
	ProjectID         int            `gorm:"column:project_id" json:"project_id"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ActivityLogGorm
func (ActivityLogGorm) TableName() string {
	return "activity_logs"
}

// NotificationGorm represents the notifications table with GORM tags
type NotificationGorm struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	UserID    int       `gorm:"column:user_id;not null" json:"user_id"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	Status    string    `gorm:"column:status;not null;default:'unread'" json:"status"`
	Action    string    `gorm:"column:action" json:"action"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// TableName specifies the table name for NotificationGorm
func (NotificationGorm) TableName() string {
	return "notifications"
}

// ProjectGorm represents the project table with GORM tags
type ProjectGorm struct {
	ProjectID      uint           `gorm:"primaryKey;column:project_id" json:"project_id"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	CustomerID     int            `gorm:"column:customer_id" json:"customer_id"`
	Region         string         `gorm:"column:region" json:"region"`
	Status         string         `gorm:"column:status;default:'Active'" json:"status"`
	StartDate      *time.Time     `gorm:"column:start_date" json:"start_date"`
	EndDate        *time.Time     `gorm:"column:end_date" json:"end_date"`
	HomesPassed    int            `gorm:"column:homes_passed;default:0" json:"homes_passed"`
	HomesTarget    int            `gorm:"column:homes_target;default:0" json:"homes_target"`
	Budget         float64        `gorm:"column:budget;type:numeric(14,2)" json:"budget"`
	ProjectManager string         `gorm:"column:project_manager" json:"project_manager"`
	Description    string         `gorm:"column:description" json:"description"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	CreatedBy      string         `gorm:"column:created_by" json:"created_by"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ProjectGorm
func (ProjectGorm) TableName() string {
	return "project"
}

// CustomerGorm represents the customers table with GORM tags
type CustomerGorm struct {
	ID            uint           `gorm:"primaryKey;column:id" json:"id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	ContactPerson string         `gorm:"column:contact_person" json:"contact_person"`
	Email         string         `gorm:"column:email" json:"email"`
	Phone         string         `gorm:"column:phone" json:"phone"`
	Address       string         `gorm:"column:address" json:"address"`
	VATNumber     string         `gorm:"column:vat_number" json:"vat_number"`
	Status        string         `gorm:"column:status;default:'Active'" json:"status"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for CustomerGorm
func (CustomerGorm) TableName() string {
	return "customers"
}

// ContractorGorm represents the contractors table with GORM tags
type ContractorGorm struct {
	ID             uint           `gorm:"primaryKey;column:id" json:"id"`
	CompanyName    string         `gorm:"column:company_name;not null" json:"company_name"`
	ContactPerson  string         `gorm:"column:contact_person" json:"contact_person"`
	Email          string         `gorm:"column:email" json:"email"`
	Phone          string         `gorm:"column:phone" json:"phone"`
	Specialization string         `gorm:"column:specialization" json:"specialization"`
	TeamSize       int            `gorm:"column:team_size;default:0" json:"team_size"`
	Status         string         `gorm:"column:status;default:'Active'" json:"status"`
	ProjectID      *int           `gorm:"column:project_id" json:"project_id"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ContractorGorm
func (ContractorGorm) TableName() string {
	return "contractors"
}

// TaskGorm represents the tasks table with GORM tags
type TaskGorm struct {
	TaskID       uint           `gorm:"primaryKey;column:task_id" json:"task_id"`
	ProjectID    int            `gorm:"column:project_id;not null" json:"project_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Description  string         `gorm:"column:description" json:"description"`
	Priority     string         `gorm:"column:priority;default:'Medium'" json:"priority"`
	AssignedTo   int            `gorm:"column:assigned_to" json:"assigned_to"`
	ContractorID *int           `gorm:"column:contractor_id" json:"contractor_id"`
	StartDate    *time.Time     `gorm:"column:start_date" json:"start_date"`
	EndDate      *time.Time     `gorm:"column:end_date" json:"end_date"`
	Status       string         `gorm:"column:status;default:'Planned'" json:"status"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for TaskGorm
func (TaskGorm) TableName() string {
	return "tasks"
}

// SupplierGorm represents the suppliers table with GORM tags
type SupplierGorm struct {
	ID            uint           `gorm:"primaryKey;column:id" json:"id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	ContactPerson string         `gorm:"column:contact_person" json:"contact_person"`
	Email         string         `gorm:"column:email" json:"email"`
	Phone         string         `gorm:"column:phone" json:"phone"`
	Address       string         `gorm:"column:address" json:"address"`
	Rating        float64        `gorm:"column:rating;type:numeric(3,1);default:3" json:"rating"`
	PaymentTerms  string         `gorm:"column:payment_terms" json:"payment_terms"`
	Status        string         `gorm:"column:status;default:'Active'" json:"status"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for SupplierGorm
func (SupplierGorm) TableName() string {
	return "suppliers"
}

// StockItemGorm represents the stock_items table with GORM tags. No status
// column: status is derived from quantity_in_stock and minimum_stock on read.
type StockItemGorm struct {
	ID                uint           `gorm:"primaryKey;column:id" json:"id"`
	ItemCode          string         `gorm:"column:item_code;uniqueIndex;not null" json:"item_code"`
	Name              string         `gorm:"column:name;not null" json:"name"`
	Category          string         `gorm:"column:category" json:"category"`
	UoM               string         `gorm:"column:uom" json:"uom"`
	QuantityInStock   int            `gorm:"column:quantity_in_stock;not null;default:0" json:"quantity_in_stock"`
	MinimumStock      int            `gorm:"column:minimum_stock;not null;default:0" json:"minimum_stock"`
	SupplierID        *int           `gorm:"column:supplier_id" json:"supplier_id"`
	LastPurchasePrice float64        `gorm:"column:last_purchase_price;type:numeric(12,2)" json:"last_purchase_price"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for StockItemGorm
func (StockItemGorm) TableName() string {
	return "stock_items"
}

// StockMovementGorm represents the stock_movements table with GORM tags
type StockMovementGorm struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	StockItemID  int       `gorm:"column:stock_item_id;not null;index" json:"stock_item_id"`
	ProjectID    *int      `gorm:"column:project_id" json:"project_id"`
	MovementType string    `gorm:"column:movement_type;not null" json:"movement_type"`
	Quantity     int       `gorm:"column:quantity;not null" json:"quantity"`
	Reference    string    `gorm:"column:reference" json:"reference"`
	MovementDate time.Time `gorm:"column:movement_date;not null" json:"movement_date"`
	CreatedBy    string    `gorm:"column:created_by" json:"created_by"`
}

// TableName specifies the table name for StockMovementGorm
func (StockMovementGorm) TableName() string {
	return "stock_movements"
}

// BOQItemGorm represents the boq_items table with GORM tags. Remaining
// quantity, total price and the allocation-derived status are not columns;
// status_override holds only the operator-set Ordered/Delivered states.
type BOQItemGorm struct {
	ID             uint           `gorm:"primaryKey;column:id" json:"id"`
	ProjectID      int            `gorm:"column:project_id;not null;index" json:"project_id"`
	StockItemID    *int           `gorm:"column:stock_item_id" json:"stock_item_id"`
	ItemCode       string         `gorm:"column:item_code" json:"item_code"`
	Description    string         `gorm:"column:description;not null" json:"description"`
	Specification  string         `gorm:"column:specification" json:"specification"`
	UoM            string         `gorm:"column:uom" json:"uom"`
	RequiredQty    int            `gorm:"column:required_qty;not null" json:"required_qty"`
	AllocatedQty   int            `gorm:"column:allocated_qty;not null;default:0" json:"allocated_qty"`
	UnitPrice      float64        `gorm:"column:unit_price;type:numeric(12,2)" json:"unit_price"`
	NeedsQuote     bool           `gorm:"column:needs_quote;default:false" json:"needs_quote"`
	StatusOverride *string        `gorm:"column:status_override" json:"status_override,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	CreatedBy      string         `gorm:"column:created_by" json:"created_by"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for BOQItemGorm
func (BOQItemGorm) TableName() string {
	return "boq_items"
}

// RFQGorm represents the rfqs table with GORM tags
type RFQGorm struct {
	ID                   uint      `gorm:"primaryKey;column:id" json:"id"`
	RFQNumber            string    `gorm:"column:rfq_number;uniqueIndex;not null" json:"rfq_number"`
	ProjectID            int       `gorm:"column:project_id;not null;index" json:"project_id"`
	SupplierID           int       `gorm:"column:supplier_id;not null" json:"supplier_id"`
	RFQDate              time.Time `gorm:"column:rfq_date;not null" json:"rfq_date"`
	DueDate              time.Time `gorm:"column:due_date;not null" json:"due_date"`
	Status               string    `gorm:"column:status;not null;default:'Open'" json:"status"`
	TotalEstimatedAmount float64   `gorm:"column:total_estimated_amount;type:numeric(14,2)" json:"total_estimated_amount"`
	PortalToken          string    `gorm:"column:portal_token;uniqueIndex;not null" json:"portal_token"`
	CreatedBy            string    `gorm:"column:created_by" json:"created_by"`
}

// TableName specifies the table name for RFQGorm
func (RFQGorm) TableName() string {
	return "rfqs"
}

// RFQItemGorm represents the rfq_items table with GORM tags
type RFQItemGorm struct {
	ID             uint    `gorm:"primaryKey;column:id" json:"id"`
	RFQID          int     `gorm:"column:rfq_id;not null;index" json:"rfq_id"`
	BOQItemID      int     `gorm:"column:boq_item_id;not null" json:"boq_item_id"`
	ItemCode       string  `gorm:"column:item_code" json:"item_code"`
	Description    string  `gorm:"column:description" json:"description"`
	Specification  string  `gorm:"column:specification" json:"specification"`
	UoM            string  `gorm:"column:uom" json:"uom"`
	Quantity       int     `gorm:"column:quantity;not null" json:"quantity"`
	EstimatedPrice float64 `gorm:"column:estimated_price;type:numeric(12,2)" json:"estimated_price"`
}

// TableName specifies the table name for RFQItemGorm
func (RFQItemGorm) TableName() string {
	return "rfq_items"
}

// QuoteGorm represents the quotes table with GORM tags
type QuoteGorm struct {
	ID            uint       `gorm:"primaryKey;column:id" json:"id"`
	RFQID         int        `gorm:"column:rfq_id;not null;index" json:"rfq_id"`
	SupplierID    int        `gorm:"column:supplier_id;not null" json:"supplier_id"`
	SubmittedDate time.Time  `gorm:"column:submitted_date;not null" json:"submitted_date"`
	ValidUntil    *time.Time `gorm:"column:valid_until" json:"valid_until"`
	LeadTimeDays  int        `gorm:"column:lead_time_days;not null;default:0" json:"lead_time_days"`
	PaymentTerms  string     `gorm:"column:payment_terms" json:"payment_terms"`
	TotalAmount   float64    `gorm:"column:total_amount;type:numeric(14,2)" json:"total_amount"`
	Status        string     `gorm:"column:status;not null;default:'Submitted'" json:"status"`
	Notes         string     `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for QuoteGorm
func (QuoteGorm) TableName() string {
	return "quotes"
}

// QuoteItemGorm represents the quote_items table with GORM tags
type QuoteItemGorm struct {
	ID         uint    `gorm:"primaryKey;column:id" json:"id"`
	QuoteID    int     `gorm:"column:quote_id;not null;index" json:"quote_id"`
	RFQItemID  int     `gorm:"column:rfq_item_id;not null" json:"rfq_item_id"`
	UnitPrice  float64 `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice float64 `gorm:"column:total_price;type:numeric(14,2);not null;default:0" json:"total_price"`
}

// TableName specifies the table name for QuoteItemGorm
func (QuoteItemGorm) TableName() string {
	return "quote_items"
}
