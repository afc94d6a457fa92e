package usc

import "fmt"

// Auth is the facility authentication response.
type Auth struct {
	Scope        string `json:"scope"`
	IDToken      string `json:"id_token"`
	ExpiresIn    string `json:"expires_in"`
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MemberInfo is the facility's record for the authenticated member.
type MemberInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Slot is a bookable time window at the facility.
type Slot struct {
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	IsAvailable       bool   `json:"isAvailable"`
	LinkedProductID   int64  `json:"linkedProductId"`   // time slot
	BookableProductID int64  `json:"bookableProductId"` // court number
}

// SlotsResponse is the paginated bookable-slots listing.
type SlotsResponse struct {
	Data      []Slot `json:"data"`
	Page      int    `json:"page"`
	Count     int    `json:"count"`
	Total     int    `json:"total"`
	PageCount int    `json:"pageCount"`
}

// validate rejects responses with missing product ids. The API
// occasionally returns slots with null ids; such a response is treated
// as transient and retried.
func (r *SlotsResponse) validate() error {
	for i, s := range r.Data {
		if s.LinkedProductID == 0 || s.BookableProductID == 0 {
			return fmt.Errorf("slot %d has missing product ids", i)
		}
	}
	return nil
}

// BookingParams are the slot parameters of a booking submission.
type BookingParams struct {
	BookableLinkedProductID int64    `json:"bookableLinkedProductId"`
	BookableProductID       int64    `json:"bookableProductId"`
	ClickedOnBook           bool     `json:"clickedOnBook"`
	StartDate               string   `json:"startDate"`
	EndDate                 string   `json:"endDate"`
	InvitedGuests           []string `json:"invitedGuests"`
	InvitedMemberEmails     []string `json:"invitedMemberEmails"`
	InvitedOthers           []string `json:"invitedOthers"`
	SecondaryPurchaseMsg    *string  `json:"secondaryPurchaseMessage"`
	PrimaryPurchaseMsg      *string  `json:"primaryPurchaseMessage"`
}

// BookingData is the payload submitted to book a slot.
type BookingData struct {
	MemberID             int64         `json:"memberId"`
	Params               BookingParams `json:"params"`
	DateOfRegistration   *string       `json:"dateOfRegistration"`
	OrganizationID       *string       `json:"organizationId"`
	SecondaryPurchaseMsg *string       `json:"secondaryPurchaseMessage"`
	PrimaryPurchaseMsg   *string       `json:"primaryPurchaseMessage"`
}

// NewBookingData builds the booking payload for a slot, inviting the
// given co-participant emails.
func NewBookingData(memberID int64, invited []string, slot Slot) BookingData {
	if invited == nil {
		invited = []string{}
	}
	return BookingData{
		MemberID: memberID,
		Params: BookingParams{
			BookableLinkedProductID: slot.LinkedProductID,
			BookableProductID:       slot.BookableProductID,
			ClickedOnBook:           true,
			StartDate:               slot.StartDate,
			EndDate:                 slot.EndDate,
			InvitedGuests:           []string{},
			InvitedMemberEmails:     invited,
			InvitedOthers:           []string{},
		},
	}
}
