package models

// ===========================================================================
// Company
// A tenant of the platform. All contacts, conversations and webhook
// subscriptions belong to exactly one company. Company administration
// happens elsewhere; ingestion only reads these rows.
// ===========================================================================

// CompanyStatus lifecycle state of a company account.
type CompanyStatus string

const (
	// CompanyActive the company is live.
	CompanyActive CompanyStatus = "active"

	// CompanyInactive the company is suspended or canceled.
	CompanyInactive CompanyStatus = "inactive"
)

// Company represents a tenant.
type Company struct {
	BaseModel

	// Name display name.
	Name string `gorm:"size:255;not null" json:"name"`

	// Status active/inactive.
	Status CompanyStatus `gorm:"size:20;not null;default:'active'" json:"status"`

	// Relations
	Instances     []Instance            `gorm:"foreignKey:CompanyID" json:"instances,omitempty"`
	Contacts      []Contact             `gorm:"foreignKey:CompanyID" json:"contacts,omitempty"`
	Subscriptions []WebhookSubscription `gorm:"foreignKey:CompanyID" json:"subscriptions,omitempty"`
}

// TableName returns the table name.
func (Company) TableName() string {
	return "companies"
}

// IsActive reports whether the company is live.
func (c *Company) IsActive() bool { return c.Status == CompanyActive }
