package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/hirecall/internal/ats"
	"github.com/amishk599/hirecall/internal/mail"
	"github.com/amishk599/hirecall/internal/model"
)

const pdfContentType = "application/pdf"

// readPDF returns the uploaded PDF in field. A missing file yields nil data
// and no error so the workflow reports its own missing-field message.
func (h *handler) readPDF(c *gin.Context, field string) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)

	fh, err := c.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, h.tooLarge()
		}
		return nil, nil
	}
	if fh.Header.Get("Content-Type") != pdfContentType {
		return nil, model.Invalid("Only PDF files are accepted")
	}
	if fh.Size > h.MaxUploadBytes {
		return nil, h.tooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}

func (h *handler) tooLarge() error {
	return model.Invalid("File size exceeds %dMB limit", h.MaxUploadBytes>>20)
}

func (h *handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.Logger.Debug("bad request body", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

type scoreApplicationRequest struct {
	ApplicationID string `json:"applicationId"`
	JobPostID     string `json:"jobPostId"`
}

func (h *handler) scoreApplication(c *gin.Context) {
	var req scoreApplicationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.Scorer.ScoreApplication(c.Request.Context(), req.ApplicationID, req.JobPostID)
	if err != nil {
		h.fail(c, "ats-score-application", "Application or job post not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": res})
}

func (h *handler) checkATSScore(c *gin.Context) {
	data, err := h.readPDF(c, "cvFile")
	if err != nil {
		h.fail(c, "check-ats-score", "", err)
		return
	}
	check, err := h.Scorer.CheckResume(c.Request.Context(), data, c.PostForm("jobDescription"))
	if err != nil {
		h.fail(c, "check-ats-score", "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": check})
}

func (h *handler) applyForJob(c *gin.Context) {
	data, err := h.readPDF(c, "cvFile")
	if err != nil {
		h.fail(c, "apply-for-job", "", err)
		return
	}
	app, err := h.Intake.Submit(c.Request.Context(), ats.Submission{
		JobPostID:      c.PostForm("jobPostId"),
		CandidateName:  c.PostForm("candidateName"),
		CandidateEmail: c.PostForm("candidateEmail"),
		CandidatePhone: c.PostForm("candidatePhone"),
		CoverLetter:    c.PostForm("coverLetter"),
		LinkedInURL:    c.PostForm("linkedinUrl"),
		Resume:         data,
	})
	if err != nil {
		h.fail(c, "apply-for-job", "Job post not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": gin.H{
		"id":      app.ID,
		"message": "Application submitted successfully",
	}})
}

type emailAppliedRequest struct {
	JobPostID      string `json:"jobPostId"`
	CandidateEmail string `json:"candidateEmail"`
}

func (h *handler) checkEmailApplied(c *gin.Context) {
	var req emailAppliedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	applied, err := h.Intake.EmailApplied(c.Request.Context(), req.JobPostID, req.CandidateEmail)
	if err != nil {
		h.fail(c, "check-email-applied", "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alreadyApplied": applied})
}

func (h *handler) manualATSCheck(c *gin.Context) {
	data, err := h.readPDF(c, "cvFile")
	if err != nil {
		h.fail(c, "manual-ats-check", "", err)
		return
	}
	res, err := h.Scorer.ManualCheck(c.Request.Context(), c.PostForm("jobPostId"), data)
	if err != nil {
		h.fail(c, "manual-ats-check", "Job post not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": gin.H{
		"score":    res.Score,
		"analysis": res.Analysis,
	}})
}

type shortlistRequest struct {
	ApplicationID string `json:"applicationId"`
}

func (h *handler) shortlistCandidate(c *gin.Context) {
	var req shortlistRequest
	if !h.bindJSON(c, &req) {
		return
	}
	app, err := h.Shortlister.Shortlist(c.Request.Context(), req.ApplicationID)
	if err != nil {
		h.fail(c, "shortlist-candidate", "Application not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": gin.H{
		"message":     "Candidate shortlisted successfully",
		"application": app,
	}})
}

type shortlistEmailRequest struct {
	CandidateName    string   `json:"candidateName"`
	CandidateEmail   string   `json:"candidateEmail"`
	JobTitle         string   `json:"jobTitle"`
	OrganizationName string   `json:"organizationName"`
	ATSScore         *float64 `json:"atsScore"`
}

func (h *handler) sendShortlistEmail(c *gin.Context) {
	var req shortlistEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ATSScore == nil {
		h.fail(c, "send-shortlist-email", "", model.Invalid("Missing required fields (candidateName, candidateEmail, jobTitle, atsScore)"))
		return
	}
	id, err := h.Shortlister.SendEmail(c.Request.Context(), mail.Shortlist{
		CandidateName:    req.CandidateName,
		CandidateEmail:   req.CandidateEmail,
		JobTitle:         req.JobTitle,
		OrganizationName: req.OrganizationName,
		Score:            ats.ClampScore(*req.ATSScore),
	})
	if err != nil {
		h.fail(c, "send-shortlist-email", "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": "Email sent successfully", "id": id})
}
