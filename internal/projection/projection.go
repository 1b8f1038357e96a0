// Package projection derives current state from computer and user timelines.
// Every function here is pure: no I/O, no clock reads.
package projection

import (
	"sort"
	"time"

	"computer-inventory-api/internal/model"
)

// DefaultWarrantyThresholdDays is the YELLOW window used when no threshold is given.
const DefaultWarrantyThresholdDays = 30

const day = 24 * time.Hour

// CurrentStatus returns the status assignment with the latest AssignDate.
// Ties go to the entry appended last. Nil when the timeline is empty.
func CurrentStatus(c model.Computer) *model.StatusAssignment {
	var current *model.StatusAssignment
	for i := range c.StatusAssignments {
		sa := &c.StatusAssignments[i]
		if current == nil || !sa.AssignDate.Before(current.AssignDate) {
			current = sa
		}
	}
	return current
}

// CurrentAssignment returns the open user assignment, or nil.
func CurrentAssignment(c model.Computer) *model.UserAssignment {
	for i := range c.UserAssignments {
		if c.UserAssignments[i].IsOpen() {
			return &c.UserAssignments[i]
		}
	}
	return nil
}

// OpenAssignments returns every assignment without an end date.
func OpenAssignments(assignments []model.UserAssignment) []model.UserAssignment {
	open := make([]model.UserAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.IsOpen() {
			open = append(open, a)
		}
	}
	return open
}

// WarrantyBucket classifies an expiration date with the default 30 day window.
func WarrantyBucket(expiration, now time.Time) model.WarrantyStatus {
	return WarrantyBucketWithin(expiration, now, DefaultWarrantyThresholdDays)
}

// WarrantyBucketWithin classifies an expiration date: RED once expired,
// YELLOW within thresholdDays, GREEN otherwise. A negative threshold uses
// the default; zero leaves no YELLOW window.
func WarrantyBucketWithin(expiration, now time.Time, thresholdDays int) model.WarrantyStatus {
	if thresholdDays < 0 {
		thresholdDays = DefaultWarrantyThresholdDays
	}
	remaining := expiration.Sub(now)
	switch {
	case remaining <= 0:
		return model.WarrantyRed
	case remaining <= time.Duration(thresholdDays)*day:
		return model.WarrantyYellow
	default:
		return model.WarrantyGreen
	}
}

// ExpiringWithin keeps the computers whose warranty ends on or before now + thresholdDays.
// Already expired computers are included.
func ExpiringWithin(computers []model.Computer, thresholdDays int, now time.Time) []model.Computer {
	cutoff := ExpiryCutoff(now, thresholdDays)
	expiring := make([]model.Computer, 0)
	for _, c := range computers {
		if !c.WarrantyExpirationDate.After(cutoff) {
			expiring = append(expiring, c)
		}
	}
	return expiring
}

// ExpiryCutoff is the latest expiration date ExpiringWithin still keeps.
// Thresholds follow WarrantyBucketWithin: negative uses the default, zero
// keeps only expired warranties.
func ExpiryCutoff(now time.Time, thresholdDays int) time.Time {
	if thresholdDays < 0 {
		thresholdDays = DefaultWarrantyThresholdDays
	}
	return now.Add(time.Duration(thresholdDays) * day)
}

// ComputerView builds the read model for a computer loaded with its timelines.
func ComputerView(c model.Computer, now time.Time, thresholdDays int) model.ComputerView {
	view := model.ComputerView{
		ID:                     c.ID,
		ManufacturerID:         c.ManufacturerID,
		ManufacturerName:       c.ManufacturerName,
		SerialNumber:           c.SerialNumber,
		PurchaseDate:           c.PurchaseDate,
		WarrantyExpirationDate: c.WarrantyExpirationDate,
		Specifications:         c.Specifications,
		ImageURL:               c.ImageURL,
		Version:                c.Version,
		WarrantyStatus:         WarrantyBucketWithin(c.WarrantyExpirationDate, now, thresholdDays),
		CreatedAt:              c.CreatedAt,
	}

	if status := CurrentStatus(c); status != nil {
		view.Status = status.StatusName
		view.StatusDisplayName = model.StatusDisplayName(status.StatusName)
	}

	if current := CurrentAssignment(c); current != nil {
		view.CurrentUser = &model.UserSummary{
			ID:        current.UserID,
			FirstName: current.UserFirstName,
			LastName:  current.UserLastName,
			Email:     current.UserEmail,
		}
	}

	return view
}

// ComputerViews maps ComputerView over a slice.
func ComputerViews(computers []model.Computer, now time.Time, thresholdDays int) []model.ComputerView {
	views := make([]model.ComputerView, 0, len(computers))
	for _, c := range computers {
		views = append(views, ComputerView(c, now, thresholdDays))
	}
	return views
}

// UserView builds the read model for a user; only open assignments count
// towards the current computers.
func UserView(u model.User) model.UserView {
	view := model.UserView{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		CreatedAt:        u.CreatedAt,
		CurrentComputers: make([]model.ComputerSummary, 0),
	}
	for _, a := range OpenAssignments(u.Assignments) {
		view.CurrentComputers = append(view.CurrentComputers, model.ComputerSummary{
			ID:               a.ComputerID,
			SerialNumber:     a.SerialNumber,
			ManufacturerName: a.ManufacturerName,
			AssignedSince:    a.StartDate,
		})
	}
	return view
}

// UserViews maps UserView over a slice.
func UserViews(users []model.User) []model.UserView {
	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView(u))
	}
	return views
}

// AssignmentView builds the display form of a user assignment.
func AssignmentView(a model.UserAssignment) model.AssignmentView {
	return model.AssignmentView{
		ID:               a.ID,
		ComputerID:       a.ComputerID,
		UserID:           a.UserID,
		StartDate:        a.StartDate,
		EndDate:          a.EndDate,
		UserFullName:     model.User{FirstName: a.UserFirstName, LastName: a.UserLastName}.FullName(),
		UserEmail:        a.UserEmail,
		SerialNumber:     a.SerialNumber,
		ManufacturerName: a.ManufacturerName,
	}
}

// History returns assignment views newest first. Entries with equal start
// dates keep reverse insertion order.
func History(assignments []model.UserAssignment) []model.AssignmentView {
	views := make([]model.AssignmentView, len(assignments))
	for i, a := range assignments {
		views[len(assignments)-1-i] = AssignmentView(a)
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].StartDate.After(views[j].StartDate)
	})
	return views
}
