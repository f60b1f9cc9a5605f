package models

// Client is a seeded catalog entry with the same lifecycle as Product:
// created once at seed time, read-only afterwards.
type Client struct {
	ID                    uint   `gorm:"primaryKey" json:"id"`
	Name                  string `gorm:"size:255;not null" json:"name"`
	Address               string `gorm:"size:500;not null" json:"address"`
	CompanyRegistrationNo string `gorm:"size:100;not null" json:"company_registration_no"`
}
