package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"metals_backend/internal/feature/prices/domain/entity"
	"metals_backend/internal/feature/prices/usecase"
)

const dateLayout = "2006-01-02"

// Terminal talks to the market-data terminal through its local gateway.
// A session is established lazily on first use and re-established once when
// a request finds it stale; a second consecutive failure surfaces as an
// empty result and a disconnected status, never as a hard error.
//
// The gateway is a single request/response conversation, so all calls
// serialize on reqMu. Status only touches stateMu and never blocks behind an
// in-flight request.
type Terminal struct {
	cfg    Config
	client *http.Client

	reqMu sync.Mutex // one outstanding conversation with the gateway

	stateMu   sync.RWMutex
	sessionID string
	connected bool
	message   string
}

var _ usecase.PriceProvider = (*Terminal)(nil)

// New creates a terminal client with the given configuration and HTTP client.
func New(cfg Config, client *http.Client) *Terminal {
	return &Terminal{
		cfg:     cfg,
		client:  client,
		message: "Terminal session not established yet",
	}
}

// Status reports the last known session state without blocking.
func (t *Terminal) Status() entity.ConnectionStatus {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return entity.ConnectionStatus{
		Available: true,
		Connected: t.connected,
		Message:   t.message,
	}
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type snapshotRequest struct {
	Symbols []string `json:"symbols"`
	Fields  []string `json:"fields"`
}

type snapshotResponse struct {
	Quotes []struct {
		Symbol          string   `json:"symbol"`
		PxLast          *float64 `json:"px_last"`
		Change          *float64 `json:"change"`
		ChangePct       *float64 `json:"change_pct"`
		Description     string   `json:"description"`
		ProductCategory string   `json:"product_category"`
	} `json:"quotes"`
}

type historicalRequest struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type historicalResponse struct {
	Points []struct {
		Date   string  `json:"date"`
		PxLast float64 `json:"px_last"`
	} `json:"points"`
}

// Snapshot fetches real-time quotes for the given symbols. Symbols the
// terminal does not recognize are simply absent from the result; an
// unreachable terminal yields an empty result.
func (t *Terminal) Snapshot(ctx context.Context, symbols []string) ([]entity.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	t.reqMu.Lock()
	defer t.reqMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.SnapshotTimeout)
	defer cancel()

	var body snapshotResponse
	req := snapshotRequest{
		Symbols: symbols,
		Fields:  []string{"PX_LAST", "CHANGE", "CHANGE_PCT", "DESCRIPTION", "PRODUCT_CATEGORY"},
	}
	if err := t.roundTrip(ctx, "/snapshot", req, &body); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			// Caller went away: abandon rather than report unavailable.
			return nil, ctx.Err()
		}
		slog.Warn("terminal snapshot failed", "symbols", len(symbols), "error", err)
		return nil, nil
	}

	quotes := make([]entity.Quote, 0, len(body.Quotes))
	for _, q := range body.Quotes {
		quotes = append(quotes, entity.Quote{
			Symbol:      q.Symbol,
			LastPrice:   q.PxLast,
			Change:      q.Change,
			ChangePct:   q.ChangePct,
			Description: q.Description,
			Category:    q.ProductCategory,
		})
	}
	return quotes, nil
}

// HistoricalRange fetches daily prices for [start, end], ascending by date.
// Only days the terminal reports are returned; non-trading days are not
// synthesized.
func (t *Terminal) HistoricalRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PricePoint, error) {
	t.reqMu.Lock()
	defer t.reqMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.HistoricalTimeout)
	defer cancel()

	var body historicalResponse
	req := historicalRequest{
		Symbol:    symbol,
		StartDate: start.UTC().Format(dateLayout),
		EndDate:   end.UTC().Format(dateLayout),
	}
	if err := t.roundTrip(ctx, "/historical", req, &body); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		slog.Warn("terminal historical fetch failed", "symbol", symbol, "error", err)
		return nil, nil
	}

	points := make([]entity.PricePoint, 0, len(body.Points))
	for _, p := range body.Points {
		d, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", p.Date, err)
		}
		points = append(points, entity.PricePoint{Date: d, Price: p.PxLast})
	}
	return points, nil
}

// roundTrip performs one gateway request, establishing the session lazily
// and re-establishing it once when the request finds it stale.
func (t *Terminal) roundTrip(ctx context.Context, path string, payload, out any) error {
	sessionID, err := t.ensureSession(ctx)
	if err != nil {
		return err
	}

	err = t.post(ctx, path, sessionID, payload, out)
	if err == nil {
		t.setConnected("Connected to terminal")
		return nil
	}

	// The caller going away is not a stale session; keep it for the next
	// request instead of tearing down a healthy connection.
	if ctx.Err() != nil {
		return err
	}

	// Stale session or dropped gateway: reconnect once, then give up.
	t.resetSession()
	sessionID, serr := t.ensureSession(ctx)
	if serr != nil {
		return serr
	}
	if err := t.post(ctx, path, sessionID, payload, out); err != nil {
		t.setDisconnected(fmt.Sprintf("Terminal request failed after reconnect: %v", err))
		return err
	}
	t.setConnected("Connected to terminal")
	return nil
}

// ensureSession returns the current session id, starting a session if none
// is established.
func (t *Terminal) ensureSession(ctx context.Context) (string, error) {
	t.stateMu.RLock()
	sessionID := t.sessionID
	t.stateMu.RUnlock()
	if sessionID != "" {
		return sessionID, nil
	}

	var body sessionResponse
	if err := t.post(ctx, "/session", "", struct{}{}, &body); err != nil {
		t.setDisconnected(fmt.Sprintf("Failed to start terminal session: %v", err))
		return "", err
	}
	if body.SessionID == "" {
		t.setDisconnected("Terminal gateway returned an empty session id")
		return "", fmt.Errorf("terminal: empty session id")
	}

	t.stateMu.Lock()
	t.sessionID = body.SessionID
	t.connected = true
	t.message = "Connected to terminal"
	t.stateMu.Unlock()
	slog.Info("terminal session established", "gateway", t.cfg.BaseURL())
	return body.SessionID, nil
}

func (t *Terminal) post(ctx context.Context, path, sessionID string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL()+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("terminal gateway http %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (t *Terminal) resetSession() {
	t.stateMu.Lock()
	t.sessionID = ""
	t.stateMu.Unlock()
}

func (t *Terminal) setConnected(message string) {
	t.stateMu.Lock()
	t.connected = true
	t.message = message
	t.stateMu.Unlock()
}

func (t *Terminal) setDisconnected(message string) {
	t.stateMu.Lock()
	t.connected = false
	t.message = message
	t.stateMu.Unlock()
}
