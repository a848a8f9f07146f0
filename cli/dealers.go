// ABOUTME: Dealer CLI commands
// ABOUTME: Human-friendly commands for adding, listing, updating and deleting dealers
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/dealerdesk/models"
	"github.com/harperreed/dealerdesk/store"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseDateFlag(name, value string) (*models.Date, error) {
	if value == "" {
		return nil, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

// AddDealerCommand adds a new dealer.
func AddDealerCommand(s *store.Store, args []string) error {
	fs := newFlagSet("add-dealer")
	name := fs.String("name", "", "Dealer name")
	address := fs.String("address", "", "Street address")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	website := fs.String("website", "", "Website")
	contact := fs.String("contact", "", "Contact person")
	status := fs.String("status", "", "Outreach status (default: Not Contacted)")
	lastContact := fs.String("last-contact", "", "Last contact date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Notes about the dealer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := store.DealerInput{
		Name:          *name,
		Address:       *address,
		Phone:         *phone,
		Email:         *email,
		Website:       *website,
		ContactPerson: *contact,
		Notes:         *notes,
	}
	if *status != "" {
		st, err := models.ParseStatus(*status)
		if err != nil {
			return err
		}
		in.Status = st
	}
	lc, err := parseDateFlag("last-contact", *lastContact)
	if err != nil {
		return err
	}
	in.LastContact = lc

	dealer, saved := s.AddDealer(context.Background(), in)
	if err := reportSave(saved, fmt.Sprintf("Dealer created: %s (ID: %s)", dealer.Name, dealer.ID)); err != nil {
		return err
	}
	fmt.Fprintf(out, "  Status: %s\n", dealer.Status)
	if dealer.ContactPerson != "" {
		fmt.Fprintf(out, "  Contact: %s\n", dealer.ContactPerson)
	}
	if dealer.Phone != "" {
		fmt.Fprintf(out, "  Phone: %s\n", dealer.Phone)
	}
	return nil
}

// ListDealersCommand lists dealers, optionally filtered by a search query.
func ListDealersCommand(s *store.Store, args []string) error {
	fs := newFlagSet("list-dealers")
	query := fs.String("query", "", "Search name, address, contact, email, phone, notes")
	status := fs.String("status", "", "Only dealers with this status")
	order := fs.String("sort", "", "Sort order: added (default), recent or name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dealers := s.FilterDealers(*query)
	if *status != "" {
		want, err := models.ParseStatus(*status)
		if err != nil {
			return err
		}
		filtered := dealers[:0]
		for _, d := range dealers {
			if d.Status == want {
				filtered = append(filtered, d)
			}
		}
		dealers = filtered
	}
	if err := sortDealers(dealers, *order); err != nil {
		return err
	}

	if len(dealers) == 0 {
		fmt.Fprintln(out, "No dealers found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tCONTACT\tPHONE\tLAST CONTACT\tID")
	fmt.Fprintln(w, "----\t------\t-------\t-----\t------------\t--")

	for _, d := range dealers {
		lastContact := "-"
		if d.LastContact != nil {
			lastContact = d.LastContact.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Name, d.Status, dashIfEmpty(d.ContactPerson), dashIfEmpty(d.Phone), lastContact, d.ID)
	}

	_ = w.Flush()
	fmt.Fprintf(out, "\nTotal: %d dealer(s)\n", len(dealers))
	return nil
}

// sortDealers orders dealers in place. "recent" puts the latest last contact
// first and dealers never contacted last; ties keep insertion order.
func sortDealers(dealers []models.DealerRecord, order string) error {
	switch strings.ToLower(order) {
	case "", "added":
		return nil
	case "recent":
		sort.SliceStable(dealers, func(i, j int) bool {
			a, b := dealers[i].LastContact, dealers[j].LastContact
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.After(b.Time)
		})
	case "name":
		sort.SliceStable(dealers, func(i, j int) bool {
			return strings.ToLower(dealers[i].Name) < strings.ToLower(dealers[j].Name)
		})
	default:
		return fmt.Errorf("unknown sort order %q (valid: added, recent, name)", order)
	}
	return nil
}

// UpdateDealerCommand patches the fields named on the command line.
func UpdateDealerCommand(s *store.Store, args []string) error {
	fs := newFlagSet("update-dealer")
	name := fs.String("name", "", "Dealer name")
	address := fs.String("address", "", "Street address")
	phone := fs.String("phone", "", "Phone number")
	email := fs.String("email", "", "Email address")
	website := fs.String("website", "", "Website")
	contact := fs.String("contact", "", "Contact person")
	status := fs.String("status", "", "Outreach status")
	lastContact := fs.String("last-contact", "", "Last contact date (YYYY-MM-DD)")
	clearLastContact := fs.Bool("clear-last-contact", false, "Remove the last contact date")
	notes := fs.String("notes", "", "Notes about the dealer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("dealer ID required")
	}
	id := models.ID(fs.Arg(0))

	var patch store.DealerPatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "address":
			patch.Address = address
		case "phone":
			patch.Phone = phone
		case "email":
			patch.Email = email
		case "website":
			patch.Website = website
		case "contact":
			patch.ContactPerson = contact
		case "notes":
			patch.Notes = notes
		case "status":
			st, err := models.ParseStatus(*status)
			if err != nil {
				parseErr = err
				return
			}
			patch.Status = &st
		case "last-contact":
			lc, err := parseDateFlag("last-contact", *lastContact)
			if err != nil {
				parseErr = err
				return
			}
			patch.LastContact = lc
		case "clear-last-contact":
			patch.ClearLastContact = *clearLastContact
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	dealer, saved, err := s.UpdateDealer(context.Background(), id, patch)
	if errors.Is(err, store.ErrDealerNotFound) {
		return fmt.Errorf("dealer not found: %s", id)
	}
	if err != nil {
		return err
	}

	if err := reportSave(saved, fmt.Sprintf("Dealer updated: %s", dealer.Name)); err != nil {
		return err
	}
	fmt.Fprintf(out, "  Status: %s\n", dealer.Status)
	return nil
}

// DeleteDealerCommand removes a dealer. Logged activities are kept.
func DeleteDealerCommand(s *store.Store, args []string) error {
	fs := newFlagSet("delete-dealer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dealer ID required")
	}
	id := models.ID(fs.Arg(0))
	name := s.DealerName(id)

	saved, err := s.DeleteDealer(context.Background(), id)
	if errors.Is(err, store.ErrDealerNotFound) {
		return fmt.Errorf("dealer not found: %s", id)
	}
	if err != nil {
		return err
	}
	return reportSave(saved, fmt.Sprintf("Dealer deleted: %s", name))
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
