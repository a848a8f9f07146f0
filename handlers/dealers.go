// ABOUTME: Dealer MCP tool handlers
// ABOUTME: Implements add_dealer, find_dealers, update_dealer and delete_dealer tools
package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

type DealerHandlers struct {
	store *store.Store
}

func NewDealerHandlers(s *store.Store) *DealerHandlers {
	return &DealerHandlers{store: s}
}

type AddDealerInput struct {
	Name          string `json:"name,omitempty" jsonschema:"Dealer name"`
	Address       string `json:"address,omitempty" jsonschema:"Street address"`
	Phone         string `json:"phone,omitempty" jsonschema:"Phone number"`
	Email         string `json:"email,omitempty" jsonschema:"Email address"`
	Website       string `json:"website,omitempty" jsonschema:"Website URL"`
	ContactPerson string `json:"contact_person,omitempty" jsonschema:"Person to talk to at the dealership"`
	Status        string `json:"status,omitempty" jsonschema:"Outreach status: Not Contacted, Contacted, Follow Up, Scheduled, Declined, Sold"`
	LastContact   string `json:"last_contact,omitempty" jsonschema:"Last contact date (YYYY-MM-DD)"`
	Notes         string `json:"notes,omitempty" jsonschema:"Notes about the dealer"`
}

type DealerOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Website       string `json:"website,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Status        string `json:"status"`
	LastContact   string `json:"last_contact,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	SaveStatus    string `json:"save_status,omitempty"`
}

func parseDate(field, value string) (*models.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &d, nil
}

func (h *DealerHandlers) AddDealer(ctx context.Context, request *mcp.CallToolRequest, input AddDealerInput) (*mcp.CallToolResult, DealerOutput, error) {
	in := store.DealerInput{
		Name:          input.Name,
		Address:       input.Address,
		Phone:         input.Phone,
		Email:         input.Email,
		Website:       input.Website,
		ContactPerson: input.ContactPerson,
		Notes:         input.Notes,
	}
	if input.Status != "" {
		st, err := models.ParseStatus(input.Status)
		if err != nil {
			return nil, DealerOutput{}, err
		}
		in.Status = st
	}
	lc, err := parseDate("last_contact", input.LastContact)
	if err != nil {
		return nil, DealerOutput{}, err
	}
	in.LastContact = lc

	dealer, saved := h.store.AddDealer(ctx, in)
	if saved == store.Unsaved {
		return nil, DealerOutput{}, fmt.Errorf("dealer %s was added but could not be saved", dealer.ID)
	}
	return nil, dealerToOutput(dealer, saved), nil
}

type FindDealersInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search text matched against name, address, contact person, email, phone and notes"`
	Status string `json:"status,omitempty" jsonschema:"Only dealers with this status"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 25)"`
}

type FindDealersOutput struct {
	Dealers []DealerOutput `json:"dealers"`
	Total   int            `json:"total"`
}

func (h *DealerHandlers) FindDealers(_ context.Context, request *mcp.CallToolRequest, input FindDealersInput) (*mcp.CallToolResult, FindDealersOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 25
	}

	var want models.Status
	if input.Status != "" {
		st, err := models.ParseStatus(input.Status)
		if err != nil {
			return nil, FindDealersOutput{}, err
		}
		want = st
	}

	result := []DealerOutput{}
	total := 0
	for _, d := range h.store.FilterDealers(input.Query) {
		if want != "" && d.Status != want {
			continue
		}
		total++
		if len(result) < limit {
			result = append(result, dealerToOutput(d, 0))
		}
	}

	return nil, FindDealersOutput{Dealers: result, Total: total}, nil
}

type UpdateDealerInput struct {
	ID               string  `json:"id" jsonschema:"Dealer ID (required)"`
	Name             *string `json:"name,omitempty" jsonschema:"Updated dealer name"`
	Address          *string `json:"address,omitempty" jsonschema:"Updated address"`
	Phone            *string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Email            *string `json:"email,omitempty" jsonschema:"Updated email address"`
	Website          *string `json:"website,omitempty" jsonschema:"Updated website"`
	ContactPerson    *string `json:"contact_person,omitempty" jsonschema:"Updated contact person"`
	Status           string  `json:"status,omitempty" jsonschema:"New outreach status"`
	LastContact      string  `json:"last_contact,omitempty" jsonschema:"Last contact date (YYYY-MM-DD); promotes Not Contacted dealers to Contacted"`
	ClearLastContact bool    `json:"clear_last_contact,omitempty" jsonschema:"Remove the last contact date"`
	Notes            *string `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *DealerHandlers) UpdateDealer(ctx context.Context, request *mcp.CallToolRequest, input UpdateDealerInput) (*mcp.CallToolResult, DealerOutput, error) {
	if input.ID == "" {
		return nil, DealerOutput{}, fmt.Errorf("id is required")
	}

	patch := store.DealerPatch{
		Name:             input.Name,
		Address:          input.Address,
		Phone:            input.Phone,
		Email:            input.Email,
		Website:          input.Website,
		ContactPerson:    input.ContactPerson,
		Notes:            input.Notes,
		ClearLastContact: input.ClearLastContact,
	}
	if input.Status != "" {
		st, err := models.ParseStatus(input.Status)
		if err != nil {
			return nil, DealerOutput{}, err
		}
		patch.Status = &st
	}
	lc, err := parseDate("last_contact", input.LastContact)
	if err != nil {
		return nil, DealerOutput{}, err
	}
	patch.LastContact = lc

	dealer, saved, err := h.store.UpdateDealer(ctx, models.ID(input.ID), patch)
	if errors.Is(err, store.ErrDealerNotFound) {
		return nil, DealerOutput{}, fmt.Errorf("dealer not found: %s", input.ID)
	}
	if err != nil {
		return nil, DealerOutput{}, err
	}
	if saved == store.Unsaved {
		return nil, DealerOutput{}, fmt.Errorf("dealer %s was updated but could not be saved", dealer.ID)
	}

	return nil, dealerToOutput(dealer, saved), nil
}

type DeleteDealerInput struct {
	ID string `json:"id" jsonschema:"Dealer ID (required)"`
}

type DeleteDealerOutput struct {
	ID         string `json:"id"`
	Deleted    bool   `json:"deleted"`
	SaveStatus string `json:"save_status"`
}

func (h *DealerHandlers) DeleteDealer(ctx context.Context, request *mcp.CallToolRequest, input DeleteDealerInput) (*mcp.CallToolResult, DeleteDealerOutput, error) {
	if input.ID == "" {
		return nil, DeleteDealerOutput{}, fmt.Errorf("id is required")
	}

	saved, err := h.store.DeleteDealer(ctx, models.ID(input.ID))
	if errors.Is(err, store.ErrDealerNotFound) {
		return nil, DeleteDealerOutput{}, fmt.Errorf("dealer not found: %s", input.ID)
	}
	if err != nil {
		return nil, DeleteDealerOutput{}, err
	}
	if saved == store.Unsaved {
		return nil, DeleteDealerOutput{}, fmt.Errorf("dealer %s was deleted but the change could not be saved", input.ID)
	}

	return nil, DeleteDealerOutput{ID: input.ID, Deleted: true, SaveStatus: saved.String()}, nil
}

func dealerToOutput(d models.DealerRecord, saved store.SaveStatus) DealerOutput {
	output := DealerOutput{
		ID:            d.ID.String(),
		Name:          d.Name,
		Address:       d.Address,
		Phone:         d.Phone,
		Email:         d.Email,
		Website:       d.Website,
		ContactPerson: d.ContactPerson,
		Status:        string(d.Status),
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     d.UpdatedAt.Format(time.RFC3339),
	}
	if d.LastContact != nil {
		output.LastContact = d.LastContact.String()
	}
	if saved != store.Unsaved {
		output.SaveStatus = saved.String()
	}
	return output
}
