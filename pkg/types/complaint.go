package types

import (
	"strings"
	"time"
)

// Complaint is a rectification request ("contestație"). SequenceNumber is the
// human-facing case number and is distinct from the internal ID.
type Complaint struct {
	ID                string    `db:"id" json:"id"`
	SequenceNumber    int       `db:"numar_contestatie" json:"numar_contestatie"`
	ProtocolNumber    *string   `db:"numar_proces_verbal" json:"numar_proces_verbal"`
	ProtocolDate      Date      `db:"data_proces_verbal" json:"data_proces_verbal"`
	RequestNumber     *string   `db:"numar_cerere" json:"numar_cerere"`
	RequestDate       Date      `db:"data_cerere" json:"data_cerere"`
	ChosenDate        Date      `db:"data_aleasa" json:"data_aleasa"`
	PropertyID        *string   `db:"id_imobil" json:"id_imobil"`
	AttachedDocuments *string   `db:"documente_atasate" json:"documente_atasate"`
	Notes             *string   `db:"observatii" json:"observatii"`
	FieldVerified     bool      `db:"verificat_teren" json:"verificat_teren"`
	Approved          bool      `db:"admis" json:"admis"`
	Rejected          bool      `db:"respins" json:"respins"`
	UserID            *string   `db:"user_id" json:"user_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Complaint) Status() ComplaintStatus {
	return StatusOf(c.Approved, c.Rejected)
}

// Claimant is a person ("membru") attached to a complaint.
type Claimant struct {
	ID              string    `db:"id" json:"id"`
	ComplaintID     string    `db:"contestatie_id" json:"contestatie_id"`
	LastName        string    `db:"nume" json:"nume"`
	FirstName       string    `db:"prenume" json:"prenume"`
	CNP             string    `db:"cnp" json:"cnp"`
	PersonalAddress *string   `db:"adresa_personala" json:"adresa_personala"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Claimant) FullName() string {
	return strings.TrimSpace(c.LastName + " " + c.FirstName)
}

// Address holds the property location and the institutional contacts for a
// complaint. There is exactly one per complaint.
type Address struct {
	ID                      string    `db:"id" json:"id"`
	ComplaintID             string    `db:"contestatie_id" json:"contestatie_id"`
	County                  *string   `db:"judet" json:"judet"`
	UAT                     *string   `db:"uat" json:"uat"`
	PropertyAddress         *string   `db:"adresa_imobil" json:"adresa_imobil"`
	MunicipalityAddress     *string   `db:"adresa_primarie" json:"adresa_primarie"`
	AuthorizedPerson        *string   `db:"autorizat" json:"autorizat"`
	AuthorizedPersonAddress *string   `db:"adresa_autorizat" json:"adresa_autorizat"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time `db:"updated_at" json:"updated_at"`
}

// ComplaintRow is one row of the complaint ⋈ claimant ⋈ address view. A
// complaint with several claimants yields one row per claimant; a complaint
// without claimant or address still yields a row with those columns NULL.
type ComplaintRow struct {
	Complaint

	PersonID        *string `db:"person_id" json:"person_id"`
	LastName        *string `db:"nume" json:"nume"`
	FirstName       *string `db:"prenume" json:"prenume"`
	CNP             *string `db:"cnp" json:"cnp"`
	PersonalAddress *string `db:"adresa_personala" json:"adresa_personala"`

	County                  *string `db:"regiune" json:"regiune"`
	UAT                     *string `db:"uat" json:"uat"`
	PropertyAddress         *string `db:"adresa" json:"adresa"`
	MunicipalityAddress     *string `db:"adresa_primarie" json:"adresa_primarie"`
	AuthorizedPerson        *string `db:"autorizat" json:"autorizat"`
	AuthorizedPersonAddress *string `db:"adresa_autorizat" json:"adresa_autorizat"`
}

// NewComplaint groups everything written by one creation. Claimants may be
// empty for the incremental flow.
type NewComplaint struct {
	Complaint *Complaint
	Address   *Address
	Claimants []*Claimant
}

// Created is what a creation reports back to the caller.
type Created struct {
	ID             string `json:"id"`
	SequenceNumber int    `json:"numarContestatie"`
}

type Stats struct {
	Total       int `db:"total" json:"total"`
	Approved    int `db:"approved" json:"approved"`
	Rejected    int `db:"rejected" json:"rejected"`
	Pending     int `db:"pending" json:"pending"`
	Conflicting int `db:"conflicting" json:"conflicting"`
}
