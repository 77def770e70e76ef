package domain

import "time"

// Industry groups companies
type Industry struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Company represents a reviewed employer. List responses omit the detail-only fields.
type Company struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	NameEn        string    `json:"name_en,omitempty"`
	Logo          string    `json:"logo,omitempty"`
	Industry      *int64    `json:"industry,omitempty"`
	IndustryName  string    `json:"industry_name,omitempty"`
	Size          string    `json:"size,omitempty"`
	FoundedYear   *int      `json:"founded_year,omitempty"`
	Website       string    `json:"website,omitempty"`
	Location      string    `json:"location,omitempty"`
	Description   string    `json:"description,omitempty"`
	ReviewCount   int       `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
	IsVerified    bool      `json:"is_verified"`
	IsActive      bool      `json:"is_active,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// CompanyInput is the create/update body for a company
type CompanyInput struct {
	Name        string `json:"name"`
	NameEn      string `json:"name_en,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Industry    *int64 `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	FoundedYear *int   `json:"founded_year,omitempty"`
	Website     string `json:"website,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}
