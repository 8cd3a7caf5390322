package types

import "strings"

// Request payloads. Creation payloads use the camelCase keys of the
// registration form; the edit payload uses the column names of the row the
// client got back from GET /contestatii/:id.

type ComplaintFields struct {
	ProtocolNumber    string `json:"numarProcesVerbal" form:"numarProcesVerbal"`
	ProtocolDate      Date   `json:"dataProcesVerbal" form:"dataProcesVerbal"`
	RequestNumber     string `json:"numarCerere" form:"numarCerere"`
	RequestDate       Date   `json:"dataCerere" form:"dataCerere"`
	ChosenDate        Date   `json:"dataAleasa" form:"dataAleasa"`
	PropertyID        string `json:"idImobil" form:"idImobil"`
	AttachedDocuments string `json:"documenteAtasate" form:"documenteAtasate"`
	Notes             string `json:"observatii" form:"observatii"`
	FieldVerified     Flag   `json:"verificatTeren" form:"verificatTeren"`
}

type LocationFields struct {
	County                  string `json:"regiune" form:"regiune"`
	UAT                     string `json:"uat" form:"uat"`
	PropertyAddress         string `json:"adresaImobil" form:"adresaImobil"`
	MunicipalityAddress     string `json:"adresaPrimarie" form:"adresaPrimarie"`
	AuthorizedPerson        string `json:"autorizat" form:"autorizat"`
	AuthorizedPersonAddress string `json:"adresaAutorizat" form:"adresaAutorizat"`
}

type ClaimantFields struct {
	LastName        string `json:"nume" form:"nume" validate:"required"`
	FirstName       string `json:"prenume" form:"prenume" validate:"required"`
	CNP             string `json:"cnp" form:"cnp" validate:"required"`
	PersonalAddress string `json:"adresaPersonala" form:"adresaPersonala"`
}

// CreateComplaintRequest is the single-shot payload: complaint, main claimant
// and address in one body. Members lists additional claimants.
type CreateComplaintRequest struct {
	ComplaintFields
	ClaimantFields
	LocationFields

	Members []ClaimantFields `json:"membri" form:"membri" validate:"dive"`
}

func (r *CreateComplaintRequest) ToNewComplaint(userID string) *NewComplaint {
	out := &NewComplaint{
		Complaint: r.ComplaintFields.toComplaint(userID),
		Address:   r.LocationFields.toAddress(),
		Claimants: []*Claimant{r.ClaimantFields.ToClaimant("")},
	}
	for _, m := range r.Members {
		out.Claimants = append(out.Claimants, m.ToClaimant(""))
	}
	return out
}

// CreateShellRequest is the incremental payload: complaint and address only.
type CreateShellRequest struct {
	ComplaintFields
	LocationFields
}

func (r *CreateShellRequest) ToNewComplaint(userID string) *NewComplaint {
	return &NewComplaint{
		Complaint: r.ComplaintFields.toComplaint(userID),
		Address:   r.LocationFields.toAddress(),
	}
}

type AddClaimantRequest struct {
	ComplaintID string `json:"contestatie_id" form:"contestatie_id" validate:"required"`
	ClaimantFields
}

func (f ComplaintFields) toComplaint(userID string) *Complaint {
	return &Complaint{
		ProtocolNumber:    Nullable(f.ProtocolNumber),
		ProtocolDate:      f.ProtocolDate,
		RequestNumber:     Nullable(f.RequestNumber),
		RequestDate:       f.RequestDate,
		ChosenDate:        f.ChosenDate,
		PropertyID:        Nullable(f.PropertyID),
		AttachedDocuments: Nullable(f.AttachedDocuments),
		Notes:             Nullable(f.Notes),
		FieldVerified:     bool(f.FieldVerified),
		UserID:            Nullable(userID),
	}
}

func (f LocationFields) toAddress() *Address {
	return &Address{
		County:                  Nullable(f.County),
		UAT:                     Nullable(f.UAT),
		PropertyAddress:         Nullable(f.PropertyAddress),
		MunicipalityAddress:     Nullable(f.MunicipalityAddress),
		AuthorizedPerson:        Nullable(f.AuthorizedPerson),
		AuthorizedPersonAddress: Nullable(f.AuthorizedPersonAddress),
	}
}

func (f ClaimantFields) ToClaimant(complaintID string) *Claimant {
	return &Claimant{
		ComplaintID:     complaintID,
		LastName:        strings.TrimSpace(f.LastName),
		FirstName:       strings.TrimSpace(f.FirstName),
		CNP:             strings.TrimSpace(f.CNP),
		PersonalAddress: Nullable(f.PersonalAddress),
	}
}

// UpdateComplaintRequest replaces every editable field of a complaint and its
// address. The claimant is only touched when PersonID names one of the
// complaint's claimants.
type UpdateComplaintRequest struct {
	ProtocolNumber    string `json:"numar_proces_verbal" form:"numar_proces_verbal"`
	ProtocolDate      Date   `json:"data_proces_verbal" form:"data_proces_verbal"`
	RequestNumber     string `json:"numar_cerere" form:"numar_cerere"`
	RequestDate       Date   `json:"data_cerere" form:"data_cerere"`
	ChosenDate        Date   `json:"data_aleasa" form:"data_aleasa"`
	PropertyID        string `json:"id_imobil" form:"id_imobil"`
	AttachedDocuments string `json:"documente_atasate" form:"documente_atasate"`
	Notes             string `json:"observatii" form:"observatii"`
	FieldVerified     Flag   `json:"verificat_teren" form:"verificat_teren"`
	Approved          Flag   `json:"admis" form:"admis"`
	Rejected          Flag   `json:"respins" form:"respins"`

	PersonID        string `json:"person_id" form:"person_id"`
	LastName        string `json:"nume" form:"nume" validate:"required_with=PersonID"`
	FirstName       string `json:"prenume" form:"prenume" validate:"required_with=PersonID"`
	CNP             string `json:"cnp" form:"cnp" validate:"required_with=PersonID"`
	PersonalAddress string `json:"adresa_personala" form:"adresa_personala"`

	County                  string `json:"regiune" form:"regiune"`
	UAT                     string `json:"uat" form:"uat"`
	PropertyAddress         string `json:"adresa" form:"adresa"`
	MunicipalityAddress     string `json:"adresa_primarie" form:"adresa_primarie"`
	AuthorizedPerson        string `json:"autorizat" form:"autorizat"`
	AuthorizedPersonAddress string `json:"adresa_autorizat" form:"adresa_autorizat"`
}

func (r *UpdateComplaintRequest) Complaint() *Complaint {
	return &Complaint{
		ProtocolNumber:    Nullable(r.ProtocolNumber),
		ProtocolDate:      r.ProtocolDate,
		RequestNumber:     Nullable(r.RequestNumber),
		RequestDate:       r.RequestDate,
		ChosenDate:        r.ChosenDate,
		PropertyID:        Nullable(r.PropertyID),
		AttachedDocuments: Nullable(r.AttachedDocuments),
		Notes:             Nullable(r.Notes),
		FieldVerified:     bool(r.FieldVerified),
		Approved:          bool(r.Approved),
		Rejected:          bool(r.Rejected),
	}
}

func (r *UpdateComplaintRequest) Address() *Address {
	return LocationFields{
		County:                  r.County,
		UAT:                     r.UAT,
		PropertyAddress:         r.PropertyAddress,
		MunicipalityAddress:     r.MunicipalityAddress,
		AuthorizedPerson:        r.AuthorizedPerson,
		AuthorizedPersonAddress: r.AuthorizedPersonAddress,
	}.toAddress()
}

// Claimant returns nil when the request does not address a claimant.
func (r *UpdateComplaintRequest) Claimant(complaintID string) *Claimant {
	if strings.TrimSpace(r.PersonID) == "" {
		return nil
	}

	c := ClaimantFields{
		LastName:        r.LastName,
		FirstName:       r.FirstName,
		CNP:             r.CNP,
		PersonalAddress: r.PersonalAddress,
	}.ToClaimant(complaintID)
	c.ID = strings.TrimSpace(r.PersonID)
	return c
}

// ComplaintFilter holds the optional search criteria. Empty strings, zero
// dates and unset optionals are ignored.
type ComplaintFilter struct {
	SequenceNumber OptionalInt  `json:"numarContestatie" form:"numarContestatie"`
	LastName       string       `json:"nume" form:"nume"`
	FirstName      string       `json:"prenume" form:"prenume"`
	CNP            string       `json:"cnp" form:"cnp"`
	County         string       `json:"regiune" form:"regiune"`
	ProtocolNumber string       `json:"numarProcesVerbal" form:"numarProcesVerbal"`
	RequestNumber  string       `json:"numarCerere" form:"numarCerere"`
	PropertyID     string       `json:"idImobil" form:"idImobil"`
	FieldVerified  OptionalBool `json:"verificatTeren" form:"verificatTeren"`
	Approved       OptionalBool `json:"admis" form:"admis"`
	Rejected       OptionalBool `json:"respins" form:"respins"`
	DateStart      Date         `json:"dataStart" form:"dataStart"`
	DateEnd        Date         `json:"dataEnd" form:"dataEnd"`
}

type LocationPreselection struct {
	County                  string `json:"regiune" form:"regiune" validate:"required"`
	CountyName              string `json:"regiuneNume,omitempty" form:"-"`
	UAT                     string `json:"uat" form:"uat"`
	MunicipalityAddress     string `json:"adresaPrimarie" form:"adresaPrimarie"`
	AuthorizedPerson        string `json:"autorizat" form:"autorizat"`
	AuthorizedPersonAddress string `json:"adresaAutorizat" form:"adresaAutorizat"`
}

type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Nullable maps blank strings to NULL.
func Nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
