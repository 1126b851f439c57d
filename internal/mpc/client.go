package mpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// ClientConfig configures the connection to an MPC node cluster.
type ClientConfig struct {
	// Nodes are websocket URLs of cluster members.
	Nodes []string
	// Quorum is how many identical node answers a computation needs.
	Quorum int
	// Timeout bounds a single computation round trip.
	Timeout time.Duration
}

// Validate checks the cluster shape.
func (c ClientConfig) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("mpc client requires at least one node")
	}
	if c.Quorum < 1 || c.Quorum > len(c.Nodes) {
		return fmt.Errorf("quorum %d invalid for %d nodes", c.Quorum, len(c.Nodes))
	}
	return nil
}

// Client is the Backend implementation that submits computations to a
// real MPC cluster over websockets. Each computation is correlated by
// id; a node answer carrying the wrong id is discarded.
type Client struct {
	cfg    ClientConfig
	logger *log.Logger
	clock  quartz.Clock
	dialer *websocket.Dialer
}

// NewClient creates a cluster-backed card-secrecy client.
func NewClient(cfg ClientConfig, logger *log.Logger, clock quartz.Clock) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		logger: logger.WithPrefix("mpc-client"),
		clock:  clock,
		dialer: websocket.DefaultDialer,
	}, nil
}

type computationRequest struct {
	ComputationID string          `json:"computation_id"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
}

type computationResponse struct {
	ComputationID string          `json:"computation_id"`
	Error         string          `json:"error,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
}

// compute fans the request out to every node and requires Quorum nodes
// to return byte-identical results.
func (c *Client) compute(ctx context.Context, kind string, payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", kind, err)
	}
	req := computationRequest{
		ComputationID: uuid.NewString(),
		Kind:          kind,
		Payload:       raw,
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var mu sync.Mutex
	tally := make(map[string]int)
	var winner json.RawMessage

	g, ctx := errgroup.WithContext(ctx)
	for _, node := range c.cfg.Nodes {
		g.Go(func() error {
			result, err := c.submit(ctx, node, req)
			if err != nil {
				// A minority of faulty nodes must not fail the
				// computation; quorum counting decides below.
				c.logger.Warn("node computation failed",
					"node", node, "kind", kind, "error", err)
				return nil
			}
			mu.Lock()
			tally[string(result)]++
			if tally[string(result)] >= c.cfg.Quorum && winner == nil {
				winner = result
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}

	if winner == nil {
		return fmt.Errorf("%s: no quorum of %d among %d nodes: %w",
			kind, c.cfg.Quorum, len(c.cfg.Nodes), ErrProtocolFailed)
	}
	if out != nil {
		if err := json.Unmarshal(winner, out); err != nil {
			return fmt.Errorf("decode %s result: %w", kind, err)
		}
	}
	return nil
}

// submit runs one computation round trip against one node.
func (c *Client) submit(ctx context.Context, node string, req computationRequest) (json.RawMessage, error) {
	conn, _, err := c.dialer.DialContext(ctx, node, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", node, err)
	}
	defer conn.Close()

	deadline := c.clock.Now().Add(c.cfg.Timeout)
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send computation: %w", err)
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	var resp computationResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return nil, fmt.Errorf("read computation callback: %w", err)
	}

	// Correlation check: a callback for some other computation is not
	// trusted, whatever it carries.
	if resp.ComputationID != req.ComputationID {
		return nil, fmt.Errorf("callback id %q does not match computation %q: %w",
			resp.ComputationID, req.ComputationID, ErrProtocolFailed)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("node error: %s", resp.Error)
	}
	return resp.Result, nil
}

func (c *Client) Shuffle(ctx context.Context, req ShuffleRequest) (*ShuffleResult, error) {
	if len(req.Entropy) < 2 {
		return nil, ErrNotEnoughEntropy
	}
	if len(req.Entropy) != len(req.Players) {
		return nil, ErrEntropyMismatch
	}
	var res ShuffleResult
	if err := c.compute(ctx, "shuffle", req, &res); err != nil {
		return nil, err
	}
	c.logger.Info("deck shuffled", "game", req.GameID, "session", res.SessionID)
	return &res, nil
}

func (c *Client) Deal(ctx context.Context, req DealRequest) (*EncryptedCard, error) {
	if req.Position < 0 || req.Position >= 52 {
		return nil, ErrInvalidPosition
	}
	var card EncryptedCard
	if err := c.compute(ctx, "deal", req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) Reveal(ctx context.Context, req RevealRequest) (*RevealResult, error) {
	var res RevealResult
	if err := c.compute(ctx, "reveal", req, &res); err != nil {
		return nil, err
	}
	if len(res.Indices) != len(req.Cards) {
		return nil, fmt.Errorf("reveal returned %d cards for %d requested: %w",
			len(res.Indices), len(req.Cards), ErrProtocolFailed)
	}
	return &res, nil
}

type verifyShuffleRequest struct {
	SessionID  string   `json:"session_id"`
	Commitment [32]byte `json:"commitment"`
	Proof      []byte   `json:"proof"`
}

type verifyRevealRequest struct {
	SessionID string   `json:"session_id"`
	Indices   []int    `json:"indices"`
	Artifact  [32]byte `json:"artifact"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

func (c *Client) VerifyShuffle(sessionID string, commitment [32]byte, proof []byte) bool {
	var res verifyResponse
	err := c.compute(context.Background(), "verify_shuffle", verifyShuffleRequest{
		SessionID:  sessionID,
		Commitment: commitment,
		Proof:      proof,
	}, &res)
	if err != nil {
		c.logger.Warn("shuffle verification unavailable", "session", sessionID, "error", err)
		return false
	}
	return res.Valid
}

func (c *Client) VerifyReveal(sessionID string, indices []int, artifact [32]byte) bool {
	var res verifyResponse
	err := c.compute(context.Background(), "verify_reveal", verifyRevealRequest{
		SessionID: sessionID,
		Indices:   indices,
		Artifact:  artifact,
	}, &res)
	if err != nil {
		c.logger.Warn("reveal verification unavailable", "session", sessionID, "error", err)
		return false
	}
	return res.Valid
}
