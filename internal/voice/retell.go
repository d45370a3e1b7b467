package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amishk599/hirecall/internal/model"
)

// DefaultBaseURL is the Retell API root.
const DefaultBaseURL = "https://api.retellai.com"

// Ensure RetellGateway implements model.VoiceGateway.
var _ model.VoiceGateway = (*RetellGateway)(nil)

// RetellGateway talks to the Retell voice agent API. It adds no behaviour of
// its own: each method is one request.
type RetellGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRetellGateway returns a gateway for the API at baseURL.
func NewRetellGateway(baseURL, apiKey string, httpClient *http.Client) *RetellGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RetellGateway{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type createPhoneCallRequest struct {
	FromNumber       string            `json:"from_number"`
	ToNumber         string            `json:"to_number"`
	OverrideAgentID  string            `json:"override_agent_id,omitempty"`
	DynamicVariables map[string]string `json:"retell_llm_dynamic_variables,omitempty"`
}

type createWebCallRequest struct {
	AgentID          string            `json:"agent_id"`
	DynamicVariables map[string]string `json:"retell_llm_dynamic_variables,omitempty"`
}

type callResponse struct {
	CallID         string `json:"call_id"`
	CallStatus     string `json:"call_status"`
	AccessToken    string `json:"access_token"`
	Transcript     string `json:"transcript"`
	StartTimestamp *int64 `json:"start_timestamp"`
	EndTimestamp   *int64 `json:"end_timestamp"`
}

// CreatePhoneCall places an outbound call and returns the provider call id.
func (g *RetellGateway) CreatePhoneCall(ctx context.Context, req model.PhoneCallRequest) (string, error) {
	var out callResponse
	err := g.do(ctx, http.MethodPost, "/v2/create-phone-call", createPhoneCallRequest{
		FromNumber:       req.FromNumber,
		ToNumber:         req.ToNumber,
		OverrideAgentID:  req.AgentID,
		DynamicVariables: req.DynamicVariables,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("create phone call to %s: %w", req.ToNumber, err)
	}
	if out.CallID == "" {
		return "", fmt.Errorf("create phone call to %s: response has no call_id", req.ToNumber)
	}
	return out.CallID, nil
}

// CreateWebCall registers a browser call and returns its id and access token.
func (g *RetellGateway) CreateWebCall(ctx context.Context, req model.WebCallRequest) (*model.WebCall, error) {
	var out callResponse
	err := g.do(ctx, http.MethodPost, "/v2/create-web-call", createWebCallRequest{
		AgentID:          req.AgentID,
		DynamicVariables: req.DynamicVariables,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("create web call for agent %s: %w", req.AgentID, err)
	}
	if out.CallID == "" {
		return nil, fmt.Errorf("create web call for agent %s: response has no call_id", req.AgentID)
	}
	return &model.WebCall{CallID: out.CallID, AccessToken: out.AccessToken}, nil
}

// RetrieveCall fetches the provider's record of a call. Transcript is empty
// until the call has ended.
func (g *RetellGateway) RetrieveCall(ctx context.Context, callID string) (*model.ProviderCall, error) {
	var out callResponse
	if err := g.do(ctx, http.MethodGet, "/v2/get-call/"+url.PathEscape(callID), nil, &out); err != nil {
		return nil, fmt.Errorf("retrieve call %s: %w", callID, err)
	}
	return &model.ProviderCall{
		CallID:         out.CallID,
		Status:         out.CallStatus,
		Transcript:     out.Transcript,
		StartTimestamp: out.StartTimestamp,
		EndTimestamp:   out.EndTimestamp,
	}, nil
}

func (g *RetellGateway) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("voice provider: %s", bytes.TrimSpace(msg)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
