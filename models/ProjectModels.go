package models

import "time"

// Project represents a fiber deployment project.
type Project struct {
	ProjectID     int       `json:"project_id" example:"1"`
	Name          string    `json:"name" example:"Lawley Phase 2"`
	CustomerID    int       `json:"customer_id" example:"1"`
	CustomerName  string    `json:"customer_name,omitempty" example:"Vumatel"`
	Region        string    `json:"region" example:"Gauteng South"`
	Status        string    `json:"status" example:"Active"`
	StartDate     DateOnly  `json:"start_date" example:"2024-01-15"`
	EndDate       DateOnly  `json:"end_date" example:"2024-09-30"`
	HomesPassed   int       `json:"homes_passed" example:"4500"`
	HomesTarget   int       `json:"homes_target" example:"6000"`
	Budget        float64   `json:"budget" example:"12500000"`
	ProjectManager string   `json:"project_manager" example:"Sibusiso Ndlovu"`
	Description   string    `json:"description" example:"FTTH rollout, trenching and aerial"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	CreatedBy     string    `json:"created_by,omitempty" example:"John Doe"`
}

// Customer is the network owner or ISP the project is delivered for.
type Customer struct {
	ID            int       `json:"id" example:"1"`
	Name          string    `json:"name" example:"Vumatel"`
	ContactPerson string    `json:"contact_person" example:"Lerato Mokoena"`
	Email         string    `json:"email" example:"lerato@example.com"`
	Phone         string    `json:"phone" example:"0115550199"`
	Address       string    `json:"address" example:"10 Rivonia Rd, Sandton"`
	VATNumber     string    `json:"vat_number" example:"4123456789"`
	Status        string    `json:"status" example:"Active"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// Contractor is a build crew company working on one or more projects.
type Contractor struct {
	ID            int       `json:"id" example:"1"`
	CompanyName   string    `json:"company_name" example:"TrenchWorks CC"`
	ContactPerson string    `json:"contact_person" example:"Piet van Wyk"`
	Email         string    `json:"email" example:"piet@example.com"`
	Phone         string    `json:"phone" example:"0825550144"`
	Specialization string   `json:"specialization" example:"Trenching"`
	TeamSize      int       `json:"team_size" example:"12"`
	Status        string    `json:"status" example:"Active"`
	ProjectID     *int      `json:"project_id,omitempty" example:"1"`
	CreatedAt     time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

type Task struct {
	TaskID      int       `json:"task_id" example:"1"`
	ProjectID   int       `json:"project_id" example:"1"`
	Name        string    `json:"name" example:"String aerial cable on Zone 4"`
	Description string    `json:"description" example:"96F aerial run along Main St"`
	Priority    string    `json:"priority" example:"High"`
	AssignedTo  int       `json:"assigned_to" example:"1"`
	AssigneeName string   `json:"assignee_name,omitempty" example:"John Doe"`
	ContractorID *int     `json:"contractor_id,omitempty" example:"1"`
	StartDate   DateOnly  `json:"start_date" example:"2024-01-15"`
	EndDate     DateOnly  `json:"end_date" example:"2024-01-20"`
	Status      string    `json:"status" example:"In Progress"`
	CreatedAt   time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}
