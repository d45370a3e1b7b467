package calls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/hirecall/internal/ai"
	"github.com/amishk599/hirecall/internal/model"
	"github.com/amishk599/hirecall/internal/prompt"
	"github.com/amishk599/hirecall/internal/voice"
)

// GetInitialCall returns a call's analysis, producing it on first request.
// An analysed call is returned as stored without contacting the provider;
// report is nil in that case. A call the provider has no transcript for yet
// fails with model.ErrNoTranscript and can be asked for again later.
func (o *Orchestrator) GetInitialCall(ctx context.Context, id string) (*model.Call, *model.SummaryReport, error) {
	if id == "" {
		return nil, nil, model.Invalid("Missing required field (initial_call_id)")
	}
	call, err := o.calls.GetCall(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if call.IsAnalysed && call.SummaryReport != nil {
		return call, nil, nil
	}
	if !call.Dispatched() {
		return nil, nil, fmt.Errorf("call %s: %w", call.ID, model.ErrNotDispatched)
	}

	pc, err := o.voice.RetrieveCall(ctx, call.ExternalCallID)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieving call %s: %w", call.ExternalCallID, err)
	}
	if strings.TrimSpace(pc.Transcript) == "" {
		return nil, nil, fmt.Errorf("call %s: %w", call.ID, model.ErrNoTranscript)
	}
	return o.analyse(ctx, call, pc)
}

// HandleCallCompleted processes the provider's call-ended webhook. Unknown
// calls are acknowledged and ignored. Provider and model failures are logged,
// never returned: only a missing call id is an error.
func (o *Orchestrator) HandleCallCompleted(ctx context.Context, externalID string) error {
	if externalID == "" {
		return model.Invalid("Missing call_id")
	}
	log := o.logger.With("call_id", externalID)

	call, err := o.calls.GetCallByExternalID(ctx, externalID)
	if errors.Is(err, model.ErrNotFound) {
		log.Warn("webhook for unknown call ignored")
		return nil
	}
	if err != nil {
		log.Error("looking up webhook call", "error", err)
		return nil
	}
	log = log.With("initial_call_id", call.ID)
	if call.IsAnalysed {
		log.Info("webhook for analysed call ignored")
		return nil
	}

	pc, err := o.voice.RetrieveCall(ctx, externalID)
	if err != nil {
		log.Error("retrieving completed call", "error", err)
		return nil
	}
	if strings.TrimSpace(pc.Transcript) == "" {
		if _, err := o.calls.MarkEnded(ctx, call.ID); err != nil {
			log.Error("marking call ended", "error", err)
			return nil
		}
		log.Warn("call ended without transcript, stored as completed without analysis")
		return nil
	}
	if _, _, err := o.analyse(ctx, call, pc); err != nil {
		log.Error("analysing completed call", "error", err)
	}
	return nil
}

// Reconcile analyses in-progress calls whose webhook never arrived. Calls
// the provider has no transcript for are left for the next pass. It returns
// the number of calls analysed.
func (o *Orchestrator) Reconcile(ctx context.Context, limit int) (int, error) {
	pending, err := o.calls.ListCalls(ctx, model.CallFilter{
		Status:     model.CallInProgress,
		Unanalysed: true,
		Limit:      limit,
	})
	if err != nil {
		return 0, fmt.Errorf("reconciling: listing calls: %w", err)
	}

	analysed := 0
	for _, call := range pending {
		if err := ctx.Err(); err != nil {
			return analysed, err
		}
		pc, err := o.voice.RetrieveCall(ctx, call.ExternalCallID)
		if err != nil {
			o.logger.Warn("reconcile: retrieving call", "initial_call_id", call.ID, "call_id", call.ExternalCallID, "error", err)
			continue
		}
		if strings.TrimSpace(pc.Transcript) == "" {
			continue
		}
		if _, _, err := o.analyse(ctx, call, pc); err != nil {
			o.logger.Warn("reconcile: analysing call", "initial_call_id", call.ID, "error", err)
			continue
		}
		analysed++
	}

	o.logger.Info("reconciled calls", "checked", len(pending), "analysed", analysed)
	return analysed, nil
}

// analyse runs the transcript through the model and makes the terminal write.
// When another trigger wrote first, this result is dropped and the stored
// call is returned.
func (o *Orchestrator) analyse(ctx context.Context, call *model.Call, pc *model.ProviderCall) (*model.Call, *model.SummaryReport, error) {
	var candidateName, candidateEmail string
	if app, err := o.apps.GetApplication(ctx, call.JobApplicationID); err == nil {
		candidateName, candidateEmail = app.CandidateName, app.CandidateEmail
	} else {
		o.logger.Warn("loading application for call analysis", "initial_call_id", call.ID, "error", err)
	}

	var questions []model.Question
	var jobTitle, orgName string
	if cfg, err := o.jobs.GetActiveCallConfig(ctx, call.JobPostID); err == nil {
		questions, jobTitle, orgName = cfg.Script, cfg.JobTitle, cfg.OrganizationName
	}
	if jobTitle == "" {
		if job, err := o.jobs.GetJobPost(ctx, call.JobPostID); err == nil {
			jobTitle = job.Title
		}
	}

	raw, err := o.client.Complete(ctx, []model.Message{
		ai.System(prompt.CallAnalysisSystem),
		ai.User(prompt.CallAnalysis(prompt.CallAnalysisInput{
			CandidateName: candidateName,
			Transcript:    pc.Transcript,
			Questions:     questions,
		})),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("analysing call %s: %w", call.ID, err)
	}
	a, err := ParseAnalysis(ai.ExtractJSON(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("analysing call %s: %w", call.ID, err)
	}

	duration := voice.DurationSeconds(pc.StartTimestamp, pc.EndTimestamp, o.logger)
	callDate := o.now()
	if pc.StartTimestamp != nil {
		callDate = time.UnixMilli(*pc.StartTimestamp)
	}
	report := model.SummaryReport{
		CandidateName:    firstNonEmpty(a.CandidateName, candidateName),
		CandidateEmail:   candidateEmail,
		JobTitle:         jobTitle,
		OrganizationName: orgName,
		CallDuration:     duration,
		CallDate:         callDate.UTC().Format(time.RFC3339),
		Responses:        a.Responses,
		Summary:          a.Summary,
	}

	stored, won, err := o.calls.CompleteWithAnalysis(ctx, call.ID, model.Completion{
		ExternalCallID: firstNonEmpty(call.ExternalCallID, pc.CallID),
		Transcript:     pc.Transcript,
		Report:         report,
		Responses:      a.Responses,
		Duration:       duration,
	})
	if err != nil {
		return nil, nil, err
	}
	if !won {
		o.logger.Info("call already analysed, discarding duplicate result", "initial_call_id", call.ID)
		return stored, stored.SummaryReport, nil
	}

	o.logger.Info("call analysed", "initial_call_id", call.ID,
		"fit_score", report.Summary.FitScore, "recommendation", report.Summary.Recommendation)
	if report.Summary.Recommendation == model.RecommendYes {
		o.alert(stored, report)
	}
	return stored, &report, nil
}

func (o *Orchestrator) alert(call *model.Call, report model.SummaryReport) {
	if o.notifier == nil || o.tasks == nil {
		return
	}
	a := model.Alert{
		Kind:           model.AlertCallAnalysed,
		CandidateName:  report.CandidateName,
		CandidateEmail: report.CandidateEmail,
		JobTitle:       report.JobTitle,
		Score:          report.Summary.FitScore,
		Recommendation: report.Summary.Recommendation,
		Highlights:     report.Summary.Strengths,
	}
	if len(a.Highlights) > 3 {
		a.Highlights = a.Highlights[:3]
	}
	if o.opts.BaseURL != "" {
		a.Link = o.opts.BaseURL + "/calls/" + call.ID
	}
	o.tasks.Go("call-alert", func(ctx context.Context) error {
		return o.notifier.Notify(ctx, []model.Alert{a})
	})
}
