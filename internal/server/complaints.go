package server

import (
	"errors"
	"net/http"

	"contestatii/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	msgComplaintSaved     = "Contestația a fost salvată cu succes"
	msgComplaintNotFound  = "Contestația nu a fost găsită"
	msgRequestFailed      = "Nu s-a putut procesa cererea"
	msgClaimantFieldsReq  = "Câmpurile contestatie_id, nume, prenume și cnp sunt obligatorii"
	msgClaimantNotInCase  = "Persoana nu aparține acestei contestații"
	msgMainClaimantFields = "Câmpurile nume, prenume și cnp sunt obligatorii"
)

// createFailureMessage names the creation step that failed.
func createFailureMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrClaimantInsert):
		return "Nu s-a putut salva persoana"
	case errors.Is(err, types.ErrAddressInsert):
		return "Nu s-a putut salva adresa"
	case errors.Is(err, types.ErrComplaintInsert):
		return "Nu s-a putut salva contestația"
	default:
		return msgRequestFailed
	}
}

func userID(r *http.Request) string {
	if identity := identityFromContext(r.Context()); identity != nil {
		return identity.UserID
	}
	return ""
}

func (s *Service) handleCreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req types.CreateComplaintRequest
	if !s.decodeAndValidate(w, r, &req, msgMainClaimantFields) {
		return
	}

	created, err := s.complaints.CreateComplaint(r.Context(), req.ToNewComplaint(userID(r)))
	if err != nil {
		s.logger.WithError(err).Error("failed to create complaint")
		s.writeError(w, http.StatusInternalServerError, createFailureMessage(err))
		return
	}

	s.complaintCreated(w, created)
}

func (s *Service) handleCreateComplaintShell(w http.ResponseWriter, r *http.Request) {
	var req types.CreateShellRequest
	if !s.decodeAndValidate(w, r, &req, "") {
		return
	}

	created, err := s.complaints.CreateComplaintShell(r.Context(), req.ToNewComplaint(userID(r)))
	if err != nil {
		s.logger.WithError(err).Error("failed to create complaint shell")
		s.writeError(w, http.StatusInternalServerError, createFailureMessage(err))
		return
	}

	s.complaintCreated(w, created)
}

func (s *Service) complaintCreated(w http.ResponseWriter, created *types.Created) {
	s.metrics.complaintsCreated.Inc()

	s.logger.WithFields(logrus.Fields{
		"complaint_id":      created.ID,
		"numar_contestatie": created.SequenceNumber,
	}).Info("complaint created")

	s.writeJSON(w, http.StatusCreated, createdResponse{
		Status:         "success",
		ID:             created.ID,
		SequenceNumber: created.SequenceNumber,
		Message:        msgComplaintSaved,
	})
}

func (s *Service) handleAddClaimant(w http.ResponseWriter, r *http.Request) {
	var req types.AddClaimantRequest
	if !s.decodeAndValidate(w, r, &req, msgClaimantFieldsReq) {
		return
	}

	claimant := req.ClaimantFields.ToClaimant(req.ComplaintID)

	err := s.claimants.Create(r.Context(), claimant)
	if err != nil {
		if errors.Is(err, types.ErrComplaintNotFound) {
			s.writeError(w, http.StatusNotFound, msgComplaintNotFound)
			return
		}
		s.logger.WithError(err).WithField("complaint_id", req.ComplaintID).Error("failed to add claimant")
		s.writeError(w, http.StatusInternalServerError, "Nu s-a putut adăuga membrul contestației")
		return
	}

	s.writeJSON(w, http.StatusCreated, createdResponse{
		Status:  "success",
		ID:      claimant.ID,
		Message: "Membrul a fost adăugat cu succes",
	})
}

func (s *Service) handleListClaimants(w http.ResponseWriter, r *http.Request) {
	complaintID := r.PathValue("complaintID")

	claimants, err := s.claimants.ByComplaintID(r.Context(), complaintID)
	if err != nil {
		s.logger.WithError(err).WithField("complaint_id", complaintID).Error("failed to list claimants")
		s.writeError(w, http.StatusInternalServerError, "Nu s-au putut obține membrii contestației")
		return
	}

	s.writeJSON(w, http.StatusOK, claimants)
}

func (s *Service) handleGetComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID := r.PathValue("id")

	row, err := s.complaints.ComplaintView(r.Context(), complaintID)
	if err != nil {
		if errors.Is(err, types.ErrComplaintNotFound) {
			s.writeError(w, http.StatusNotFound, msgComplaintNotFound)
			return
		}
		s.logger.WithError(err).WithField("complaint_id", complaintID).Error("failed to fetch complaint")
		s.writeError(w, http.StatusInternalServerError, "Eroare la obținerea contestației")
		return
	}

	s.writeJSON(w, http.StatusOK, row)
}

func (s *Service) handleUpdateComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID := r.PathValue("id")

	var req types.UpdateComplaintRequest
	if !s.decodeAndValidate(w, r, &req, "") {
		return
	}

	err := s.complaints.UpdateComplaint(r.Context(), complaintID, req.Complaint(), req.Address(), req.Claimant(complaintID))
	if err != nil {
		switch {
		case errors.Is(err, types.ErrComplaintNotFound):
			s.writeError(w, http.StatusNotFound, msgComplaintNotFound)
		case errors.Is(err, types.ErrClaimantNotFound):
			s.writeError(w, http.StatusNotFound, msgClaimantNotInCase)
		default:
			s.logger.WithError(err).WithField("complaint_id", complaintID).Error("failed to update complaint")
			s.writeError(w, http.StatusInternalServerError, "Eroare la actualizarea contestației")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Contestația a fost actualizată cu succes"})
}

func (s *Service) handleDeleteComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID := r.PathValue("id")

	err := s.complaints.DeleteComplaint(r.Context(), complaintID)
	if err != nil {
		if errors.Is(err, types.ErrComplaintNotFound) {
			s.writeError(w, http.StatusNotFound, msgComplaintNotFound)
			return
		}
		s.logger.WithError(err).WithField("complaint_id", complaintID).Error("failed to delete complaint")
		s.writeError(w, http.StatusInternalServerError, "Eroare la ștergerea contestației")
		return
	}

	s.logger.WithField("complaint_id", complaintID).Info("complaint deleted")

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Contestația a fost ștearsă cu succes"})
}

func (s *Service) handleFilterComplaints(w http.ResponseWriter, r *http.Request) {
	var filter types.ComplaintFilter
	if !s.decodeAndValidate(w, r, &filter, "") {
		return
	}

	rows, err := s.complaints.FilterComplaints(r.Context(), &filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to filter complaints")
		s.writeError(w, http.StatusInternalServerError, "Eroare la filtrarea contestațiilor")
		return
	}

	if rows == nil {
		rows = []*types.ComplaintRow{}
	}

	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.complaints.Stats(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch complaint stats")
		s.writeError(w, http.StatusInternalServerError, "Eroare la obținerea statisticilor")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleNextNumber(w http.ResponseWriter, r *http.Request) {
	next, err := s.complaints.NextSequenceNumber(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to read next sequence number")
		s.writeError(w, http.StatusInternalServerError, msgRequestFailed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"numarContestatie": next})
}
