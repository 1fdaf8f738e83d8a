package model

import (
	"time"

	"github.com/google/uuid"
)

// DemandTemplate represents a reusable solve configuration that captures
// the demand list and solver choices but not optimization results.
type DemandTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Demand      []DemandLine `json:"demand"`
	Algorithm   Algorithm    `json:"algorithm"`
	Goal        Goal         `json:"goal"`
	UnitCost    float64      `json:"unit_cost,omitempty"`
}

// NewDemandTemplate creates a new template from the given solve data.
// It copies the demand list and intentionally excludes results.
func NewDemandTemplate(name, description string, demand []DemandLine, algorithm Algorithm, goal Goal, unitCost float64) DemandTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	copied := make([]DemandLine, len(demand))
	copy(copied, demand)
	return DemandTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Demand:      copied,
		Algorithm:   algorithm,
		Goal:        goal,
		UnitCost:    unitCost,
	}
}

// ToRequest creates a solve request from this template for the given
// master roll length.
func (t DemandTemplate) ToRequest(rollLength int) Request {
	demand := make([]DemandLine, len(t.Demand))
	copy(demand, t.Demand)
	return Request{
		MasterRollLength: rollLength,
		UnitCost:         t.UnitCost,
		Algorithm:        t.Algorithm,
		Goal:             t.Goal,
		Demand:           demand,
	}
}

// TemplateStore holds a collection of demand templates.
type TemplateStore struct {
	Templates []DemandTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []DemandTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t DemandTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByName returns a pointer to the first template with the given
// name, or nil.
func (ts *TemplateStore) FindByName(name string) *DemandTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}
