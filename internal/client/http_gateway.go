package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"luxe-booking/config"
	"luxe-booking/internal/booking"
	"luxe-booking/internal/model"
	"luxe-booking/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnexpectedResponse 回應不是預期的 JSON 格式
var ErrUnexpectedResponse = errors.New("unexpected response from reservation service")

// APIError 預約服務回傳的非 2xx 回應
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reservation service returned %d: %s", e.StatusCode, e.Message)
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

type submitResponse struct {
	ReservationCode string `json:"reservation_code"`
}

// HTTPGateway 以 HTTP 呼叫預約服務
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

var _ booking.Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(cfg config.GatewayConfig, httpClient *http.Client) *HTTPGateway {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
		log:     logger.WithComponent("gateway"),
	}
}

func (g *HTTPGateway) FetchTicketConfiguration(ctx context.Context, eventID uuid.UUID) (*model.TicketConfiguration, error) {
	var cfg model.TicketConfiguration
	if err := g.get(ctx, "/events/"+eventID.String()+"/ticket-configuration", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (g *HTTPGateway) FetchVIPTiers(ctx context.Context) ([]model.VIPTier, error) {
	var tiers []model.VIPTier
	if err := g.get(ctx, "/vip-tiers", &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// SubmitReservation 4xx 視為服務端拒絕，回傳 Success=false；5xx 與連線錯誤回傳 error
func (g *HTTPGateway) SubmitReservation(ctx context.Context, req model.ReservationRequest) (*model.ReservationResult, error) {
	var resp submitResponse
	err := g.post(ctx, "/reservations", req, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return &model.ReservationResult{Success: false, Error: apiErr.Message, Fields: apiErr.Fields}, nil
		}
		return nil, err
	}
	return &model.ReservationResult{Success: true, ReservationCode: resp.ReservationCode}, nil
}

func (g *HTTPGateway) SubmitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (bool, error) {
	err := g.post(ctx, "/vip-reservations", req, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			g.log.Info("vip reservation rejected", zap.Int("status", apiErr.StatusCode), zap.String("error", apiErr.Message))
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *HTTPGateway) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	return g.do(req, out)
}

func (g *HTTPGateway) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *HTTPGateway) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("request failed", zap.String("method", req.Method), zap.String("url", req.URL.String()), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Fields: env.Fields}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
