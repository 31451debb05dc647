package investor

import "fmt"

// Type classifies who is subscribing to the offering.
type Type string

const (
	TypeIndividual  Type = "individual"
	TypeJoint       Type = "joint"
	TypeCorporation Type = "corporation"
	TypeTrust       Type = "trust"
	TypeManaged     Type = "managed"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeIndividual, TypeJoint, TypeCorporation, TypeTrust, TypeManaged:
		return true
	default:
		return false
	}
}

// Label is the display name for the investor type.
func (t Type) Label() string {
	switch t {
	case TypeIndividual:
		return "Individual"
	case TypeJoint:
		return "Joint"
	case TypeCorporation:
		return "Corporation"
	case TypeTrust:
		return "Trust"
	case TypeManaged:
		return "Managed Account"
	default:
		return string(t)
	}
}

// EntityContact reports whether contact fields describe an entity
// representative rather than the investor personally.
func (t Type) EntityContact() bool {
	return t == TypeCorporation || t == TypeTrust
}

func NewType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid investor type: %s", s)
	}
	return t, nil
}

// ContactField identifies one field of the contact form.
type ContactField string

const (
	FieldInvestorType ContactField = "investorType"
	FieldFirstName    ContactField = "firstName"
	FieldLastName     ContactField = "lastName"
	FieldEmail        ContactField = "email"
)

func (f ContactField) IsValid() bool {
	switch f {
	case FieldInvestorType, FieldFirstName, FieldLastName, FieldEmail:
		return true
	default:
		return false
	}
}

func NewContactField(s string) (ContactField, error) {
	f := ContactField(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid contact field: %s", s)
	}
	return f, nil
}

// Record mirrors the investor entity owned by the external
// investor-management service. Only referenced, never mutated directly.
type Record struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscriptionId"`
	State          string `json:"state"`
	CurrentStep    string `json:"currentStep"`
}
