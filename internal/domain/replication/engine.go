package replication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"notevault/internal/crypto"
)

// HeaderInternalSecret authenticates node-to-node sync traffic.
const HeaderInternalSecret = "X-Internal-Secret"

// Engine periodically exchanges full state snapshots with a single peer.
// Failed cycles are logged and skipped; the next tick retries from
// scratch. A sync failure never propagates to request handlers.
type Engine struct {
	store      Store
	client     *http.Client
	log        *slog.Logger
	serverName string
	peerURL    string
	secret     string
	interval   time.Duration

	mu       sync.Mutex
	running  bool
	lastSync *time.Time
	stopCh   chan struct{}
	done     chan struct{}
}

type EngineConfig struct {
	ServerName string
	PeerURL    string
	Secret     string
	Interval   time.Duration
	Timeout    time.Duration
}

func NewEngine(store Store, cfg EngineConfig, log *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        log,
		serverName: cfg.ServerName,
		peerURL:    strings.TrimRight(cfg.PeerURL, "/"),
		secret:     cfg.Secret,
		interval:   cfg.Interval,
	}
}

// Start launches the sync loop. No-op when already running or when no
// peer is configured.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.peerURL == "" {
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.done = make(chan struct{})
	go e.run()

	e.log.Info("replication started", "peer", e.peerURL, "interval", e.interval.String())
}

// Stop cancels the loop and waits for the current cycle to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	done := e.done
	e.mu.Unlock()

	<-done
	e.log.Info("replication stopped")
}

func (e *Engine) run() {
	defer close(e.done)

	// First exchange right away so a fresh node converges without
	// waiting out a full interval.
	if err := e.syncOnce(context.Background()); err != nil {
		e.log.Error("sync cycle failed", "peer", e.peerURL, "error", err)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.syncOnce(context.Background()); err != nil {
				e.log.Error("sync cycle failed", "peer", e.peerURL, "error", err)
			}
		}
	}
}

// syncOnce pushes the full local state to the peer and merges whatever
// the peer sends back.
func (e *Engine) syncOnce(ctx context.Context) error {
	local, err := e.store.Export(ctx)
	if err != nil {
		return fmt.Errorf("export state: %w", err)
	}

	body, err := json.Marshal(SyncRequest{ServerName: e.serverName, State: *local})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.peerURL+"/api/internal/sync", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderInternalSecret, e.secret)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to peer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer returned status %d", resp.StatusCode)
	}

	var peer SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&peer); err != nil {
		return fmt.Errorf("decode peer state: %w", err)
	}

	if err := e.store.Merge(ctx, &peer.State); err != nil {
		return fmt.Errorf("merge peer state: %w", err)
	}

	now := time.Now()
	e.mu.Lock()
	e.lastSync = &now
	e.mu.Unlock()

	e.log.Info("sync cycle completed",
		"peer", peer.ServerName,
		"users", len(peer.State.Users),
		"owners", len(peer.State.Notes),
		"shares", len(peer.State.Shares))
	return nil
}

// HandleSync merges a state pushed by the peer and returns this node's
// own current state, completing a bidirectional sync in one exchange.
func (e *Engine) HandleSync(ctx context.Context, peerName string, inbound *State) (*SyncResponse, error) {
	if err := e.store.Merge(ctx, inbound); err != nil {
		return nil, fmt.Errorf("merge inbound state: %w", err)
	}

	local, err := e.store.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export state: %w", err)
	}

	now := time.Now()
	e.mu.Lock()
	e.lastSync = &now
	e.mu.Unlock()

	e.log.Info("inbound sync merged", "peer", peerName)
	return &SyncResponse{ServerName: e.serverName, State: *local}, nil
}

// CheckPeer probes the peer's internal health endpoint. Unreachable or
// misconfigured peers are reported in the result, never as an error.
func (e *Engine) CheckPeer(ctx context.Context) PeerHealth {
	if e.peerURL == "" {
		return PeerHealth{}
	}

	health := PeerHealth{Configured: true, Peer: e.peerURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.peerURL+"/api/internal/health", nil)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	req.Header.Set(HeaderInternalSecret, e.secret)

	resp, err := e.client.Do(req)
	if err != nil {
		health.Error = err.Error()
		return health
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		health.Error = fmt.Sprintf("peer returned status %d", resp.StatusCode)
		return health
	}

	var body struct {
		ServerName string `json:"server_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		health.Error = fmt.Sprintf("malformed peer response: %v", err)
		return health
	}

	health.Reachable = true
	health.ServerName = body.ServerName
	return health
}

// Authorized checks the shared secret of an inbound sync request.
func (e *Engine) Authorized(secret string) bool {
	return crypto.EqualSecrets(secret, e.secret)
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:      e.running,
		ServerName:   e.serverName,
		Peer:         e.peerURL,
		LastSyncTime: e.lastSync,
	}
}
