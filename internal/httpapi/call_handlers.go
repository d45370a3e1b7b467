package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/hirecall/internal/calls"
	"github.com/amishk599/hirecall/internal/model"
)

type createCallsRequest struct {
	JobPostID        string            `json:"job_post_id"`
	JobApplications  []calls.Candidate `json:"job_applications"`
	AgentID          int64             `json:"agent_id"`
	AgentName        string            `json:"agent_name"`
	FromNumber       string            `json:"from_number"`
	UserID           string            `json:"user_id"`
	OrganizationID   string            `json:"organization_id"`
	JobTitle         string            `json:"job_title"`
	OrganizationName string            `json:"organization_name"`
	GreetingText     string            `json:"greeting_text"`
	CallScript       []model.Question  `json:"call_script"`
}

func (h *handler) createInitialCalls(c *gin.Context) {
	var req createCallsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	created, err := h.Orchestrator.CreateInitialCalls(c.Request.Context(), calls.Batch{
		JobPostID:        req.JobPostID,
		UserID:           req.UserID,
		OrganizationID:   req.OrganizationID,
		AgentID:          req.AgentID,
		AgentName:        req.AgentName,
		FromNumber:       req.FromNumber,
		Greeting:         req.GreetingText,
		OrganizationName: req.OrganizationName,
		JobTitle:         req.JobTitle,
		Questions:        req.CallScript,
		Candidates:       req.JobApplications,
	})
	if err != nil {
		h.fail(c, "create-initial-calls", "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "calls": created})
}

type registerCallRequest struct {
	InitialCallID    string `json:"initial_call_id"`
	AgentID          int64  `json:"agent_id"`
	CandidateName    string `json:"candidate_name"`
	OrganizationName string `json:"organization_name"`
	JobTitle         string `json:"job_title"`
	AgentName        string `json:"agent_name"`
}

func (h *handler) registerInitialCall(c *gin.Context) {
	var req registerCallRequest
	if !h.bindJSON(c, &req) {
		return
	}
	web, err := h.Orchestrator.RegisterWebCall(c.Request.Context(), calls.WebCallRequest{
		InitialCallID:    req.InitialCallID,
		AgentID:          req.AgentID,
		CandidateName:    req.CandidateName,
		OrganizationName: req.OrganizationName,
		JobTitle:         req.JobTitle,
		AgentName:        req.AgentName,
	})
	if err != nil {
		h.fail(c, "register-initial-call", "Initial call not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registerCallResponse": web})
}

type initialCallRequest struct {
	InitialCallID string `json:"initial_call_id"`
}

func (h *handler) getInitialCall(c *gin.Context) {
	var req initialCallRequest
	if !h.bindJSON(c, &req) {
		return
	}
	call, report, err := h.Orchestrator.GetInitialCall(c.Request.Context(), req.InitialCallID)
	if err != nil {
		h.fail(c, "get-initial-call", "Initial call not found", err)
		return
	}
	resp := gin.H{"success": true, "initialCall": call}
	if report != nil {
		resp["analysis"] = report
	}
	c.JSON(http.StatusOK, resp)
}

type webhookRequest struct {
	CallID string `json:"call_id"`
}

// webhookCallCompleted acknowledges every delivery except one without a
// call_id. Unreadable bodies and processing failures are only logged.
func (h *handler) webhookCallCompleted(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Warn("unreadable webhook body acknowledged", "error", err)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if err := h.Orchestrator.HandleCallCompleted(c.Request.Context(), req.CallID); err != nil {
		h.fail(c, "webhook-call-completed", "", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handler) getCallConfig(c *gin.Context) {
	jobPostID := c.Query("job_post_id")
	if jobPostID == "" {
		h.fail(c, "get-call-config", "", model.Invalid("Missing required parameter (job_post_id)"))
		return
	}
	cfg, err := h.Jobs.GetActiveCallConfig(c.Request.Context(), jobPostID)
	if err != nil {
		h.fail(c, "get-call-config", "Call config not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "config": cfg})
}

func (h *handler) upsertCallConfig(c *gin.Context) {
	var req model.CallConfig
	if !h.bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(c, "upsert-call-config", "", err)
		return
	}
	if _, err := h.Jobs.GetJobPost(c.Request.Context(), req.JobPostID); err != nil {
		h.fail(c, "upsert-call-config", "Job post not found", err)
		return
	}
	if req.AgentID != 0 {
		if _, err := h.Jobs.GetAgent(c.Request.Context(), req.AgentID); err != nil {
			h.fail(c, "upsert-call-config", "", err)
			return
		}
	}
	req.IsActive = true
	saved, err := h.Jobs.UpsertCallConfig(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "upsert-call-config", "", err)
		return
	}
	h.Logger.Info("call config saved", "job_post_id", saved.JobPostID, "questions", len(saved.Script))
	c.JSON(http.StatusOK, gin.H{"success": true, "config": saved})
}

func (h *handler) listInitialCalls(c *gin.Context) {
	f := model.CallFilter{
		JobPostID:      c.Query("job_post_id"),
		ApplicationID:  c.Query("job_application_id"),
		OrganizationID: c.Query("organization_id"),
		Status:         model.CallStatus(c.Query("status")),
	}
	if f.JobPostID == "" && f.ApplicationID == "" && f.OrganizationID == "" {
		h.fail(c, "list-initial-calls", "", model.Invalid("Missing required parameters (job_post_id, job_application_id or organization_id)"))
		return
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.fail(c, "list-initial-calls", "", model.Invalid("Invalid limit %q", v))
			return
		}
		f.Limit = n
	}
	list, err := h.Calls.ListCalls(c.Request.Context(), f)
	if err != nil {
		h.fail(c, "list-initial-calls", "", err)
		return
	}
	if list == nil {
		list = []*model.Call{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "calls": list})
}

type updateCallRequest struct {
	InitialCallID string  `json:"initial_call_id"`
	IsViewed      *bool   `json:"is_viewed"`
	Notes         *string `json:"notes"`
}

func (h *handler) updateInitialCall(c *gin.Context) {
	var req updateCallRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.InitialCallID == "" {
		h.fail(c, "update-initial-call", "", model.Invalid("Missing required field (initial_call_id)"))
		return
	}
	call, err := h.Calls.UpdateCallReview(c.Request.Context(), req.InitialCallID, req.IsViewed, req.Notes)
	if err != nil {
		h.fail(c, "update-initial-call", "Initial call not found", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "initialCall": call})
}
