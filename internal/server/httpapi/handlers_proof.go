package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/server/proofs"
)

// readMultipartDoc extracts one uploaded file from a multipart request.
func readMultipartDoc(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", fmt.Errorf("%w: malformed upload: %v", common.ErrorValidation, err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: no %s uploaded", common.ErrorValidation, field)
	}
	defer file.Close()

	doc, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading %s: %v", common.ErrorValidation, field, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return doc, contentType, nil
}

// archiveDoc stores the document for audit. Archival failure is logged but
// never blocks the verification flow.
func (s *Server) archiveDoc(r *http.Request, doc []byte, contentType string) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.Store(r.Context(), doc, contentType)
	if err != nil {
		s.logger.Warn(r.Context(), "archiving document", "error", err.Error())
		return
	}
	s.logger.Debug(r.Context(), "document archived", "key", key)
}

func (s *Server) handleVerifyID(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionFromContext(r.Context())

	doc, contentType, err := readMultipartDoc(r, "idDocument")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	identity, err := s.extractor.ExtractIdentity(r.Context(), doc, contentType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if identity.Name == "" || identity.DOB == "" {
		writeError(w, http.StatusBadRequest, "could not read name and date of birth from the document")
		return
	}

	s.archiveDoc(r, doc, contentType)

	if err := s.registry.SetIdentity(sessionID, identity.Name, identity.DOB); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"identity":  identity,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	_, sess := sessionFromContext(r.Context())

	doc, contentType, err := readMultipartDoc(r, "payslip")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	amountToProve, err := strconv.ParseFloat(r.FormValue("amountToProve"), 64)
	if err != nil || amountToProve <= 0 {
		writeError(w, http.StatusBadRequest, "amountToProve must be a positive number")
		return
	}

	payslip, err := s.extractor.ExtractPayslip(r.Context(), doc, contentType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.archiveDoc(r, doc, contentType)

	validation, err := proofs.ValidatePayslip(payslip, amountToProve, time.Now())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	verified := validation.MeetsIncomeRequirement && validation.MeetsFreshnessRule
	resp := map[string]any{
		"success":    true,
		"verified":   verified,
		"extracted":  payslip,
		"validation": validation,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if !verified {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	proof, err := s.proofs.GenerateVerificationProof(r.Context(), sess, payslip, amountToProve)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp["proof"] = proof

	writeJSON(w, http.StatusOK, resp)
}
