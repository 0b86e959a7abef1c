// internal/model/customer.go
package model

import (
	"time"
)

// Customer is the store record segment predicates are evaluated against and
// templates are rendered from.
type Customer struct {
	ID         string     `bson:"_id" json:"id"`
	Name       string     `bson:"name" json:"name"`
	Email      string     `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Gender     string     `bson:"gender,omitempty" json:"gender,omitempty"`
	TotalSpend float64    `bson:"totalSpend" json:"totalSpend"`
	Visits     int        `bson:"visits" json:"visits"`
	LastActive *time.Time `bson:"lastActive,omitempty" json:"lastActive,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
}

// Attribute returns the value of a customer attribute by its wire name. The
// second return reports whether the name is part of the customer schema.
func (c *Customer) Attribute(name string) (any, bool) {
	switch name {
	case "name":
		return c.Name, true
	case "email":
		return c.Email, true
	case "phone":
		return c.Phone, true
	case "gender":
		return c.Gender, true
	case "totalSpend":
		return c.TotalSpend, true
	case "visits":
		return c.Visits, true
	case "lastActive":
		if c.LastActive == nil {
			return "", true
		}
		return *c.LastActive, true
	case "createdAt":
		return c.CreatedAt, true
	}
	return nil, false
}
