package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tmoreau/go-billing/internal/models"
)

// Seed loads the catalog reference data and the invoice number sequence row.
// It is idempotent: rows are matched by name so repeated startups do not
// duplicate them, and an existing sequence value is never reset.
func Seed(conn *gorm.DB) error {
	products := []models.Product{
		{Name: "Web Development", Price: 5000.00},
		{Name: "Mobile App Development", Price: 8000.00},
		{Name: "UI/UX Design", Price: 2500.00},
		{Name: "Cloud Infrastructure Setup", Price: 3500.00},
		{Name: "Database Design & Optimization", Price: 2000.00},
		{Name: "Technical Consulting", Price: 150.00},
		{Name: "Quality Assurance Testing", Price: 1500.00},
		{Name: "Maintenance & Support", Price: 1000.00},
	}
	for _, p := range products {
		if err := conn.Where("name = ?", p.Name).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	clients := []models.Client{
		{Name: "Acme Corporation", Address: "123 Business Ave, New York, NY 10001", CompanyRegistrationNo: "ACM-2024-001"},
		{Name: "TechStart Inc.", Address: "456 Innovation Blvd, San Francisco, CA 94105", CompanyRegistrationNo: "TECH-2024-002"},
		{Name: "Global Solutions Ltd.", Address: "789 Commerce Street, London, UK SW1A 1AA", CompanyRegistrationNo: "GLOB-2024-003"},
		{Name: "Bright Ventures LLC", Address: "321 Enterprise Way, Austin, TX 78701", CompanyRegistrationNo: "BRIT-2024-004"},
		{Name: "Coastal Trading Co.", Address: "654 Harbor Road, Miami, FL 33101", CompanyRegistrationNo: "COAST-2024-005"},
	}
	for _, c := range clients {
		if err := conn.Where("name = ?", c.Name).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed client %q: %w", c.Name, err)
		}
	}

	seq := models.InvoiceSequence{ID: 1, LastValue: 0}
	if err := conn.Where("id = ?", seq.ID).FirstOrCreate(&seq).Error; err != nil {
		return fmt.Errorf("seed invoice sequence: %w", err)
	}
	return nil
}
