package mpc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Mock is an in-process Backend for tests and local play. It runs the
// same protocol shape as the network client but computes shuffles and
// reveals itself, deterministically from the contributed entropy.
type Mock struct {
	mu       sync.Mutex
	logger   *log.Logger
	sessions map[string]*mockSession
}

type mockSession struct {
	perm       [52]uint8
	key        [32]byte
	commitment [32]byte
	proof      []byte
	dealt      [52]bool
	owners     [52]string
}

// NewMock creates an in-process card-secrecy backend.
func NewMock(logger *log.Logger) *Mock {
	return &Mock{
		logger:   logger.WithPrefix("mpc-mock"),
		sessions: make(map[string]*mockSession),
	}
}

func (m *Mock) Shuffle(_ context.Context, req ShuffleRequest) (*ShuffleResult, error) {
	if len(req.Entropy) < 2 {
		return nil, ErrNotEnoughEntropy
	}
	if len(req.Entropy) != len(req.Players) {
		return nil, ErrEntropyMismatch
	}

	// XOR-combine the contributions: any single honest player's entropy
	// randomizes the seed regardless of what the others chose.
	var combined [32]byte
	for _, e := range req.Entropy {
		for i := range combined {
			combined[i] ^= e[i]
		}
	}
	seed := sha256.Sum256(append([]byte(req.GameID), combined[:]...))

	perm := shufflePermutation(seed)

	sessionID := uuid.NewString()
	sess := &mockSession{
		perm: perm,
		key:  sha256.Sum256(append(seed[:], []byte("deal-key")...)),
	}
	sess.commitment = sha256.Sum256(append([]byte(sessionID), perm[:]...))
	proof := sha256.Sum256(append(perm[:], sess.commitment[:]...))
	sess.proof = proof[:]

	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()

	m.logger.Debug("shuffled deck", "game", req.GameID, "session", sessionID,
		"contributions", len(req.Entropy))

	return &ShuffleResult{
		SessionID:  sessionID,
		Commitment: sess.commitment,
		Proof:      sess.proof,
	}, nil
}

// shufflePermutation runs a Fisher-Yates pass driven by a SHA-256
// counter stream over the seed.
func shufflePermutation(seed [32]byte) [52]uint8 {
	var perm [52]uint8
	for i := range perm {
		perm[i] = uint8(i)
	}

	counter := uint64(0)
	draw := func() uint64 {
		var buf [40]byte
		copy(buf[:32], seed[:])
		binary.BigEndian.PutUint64(buf[32:], counter)
		counter++
		digest := sha256.Sum256(buf[:])
		return binary.BigEndian.Uint64(digest[:8])
	}

	for i := len(perm) - 1; i > 0; i-- {
		j := int(draw() % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func (m *Mock) Deal(_ context.Context, req DealRequest) (*EncryptedCard, error) {
	if req.Position < 0 || req.Position >= 52 {
		return nil, ErrInvalidPosition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[req.SessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	if sess.dealt[req.Position] {
		return nil, ErrCardAlreadyDealt
	}
	sess.dealt[req.Position] = true
	sess.owners[req.Position] = req.Owner

	var posByte = []byte{uint8(req.Position)}
	ciphertext := sha256.Sum256(concat(sess.key[:], posByte, []byte{sess.perm[req.Position]}))
	shard := sha256.Sum256(concat(sess.key[:], []byte(req.Owner), posByte))

	return &EncryptedCard{
		SessionID:  req.SessionID,
		Position:   req.Position,
		Ciphertext: ciphertext,
		KeyShard:   shard,
		Owner:      req.Owner,
	}, nil
}

func (m *Mock) Reveal(_ context.Context, req RevealRequest) (*RevealResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[req.SessionID]
	if !ok {
		return nil, ErrUnknownSession
	}

	indices := make([]int, len(req.Cards))
	for i, card := range req.Cards {
		if card.SessionID != req.SessionID {
			return nil, ErrProtocolFailed
		}
		if card.Position < 0 || card.Position >= 52 || !sess.dealt[card.Position] {
			return nil, ErrInvalidPosition
		}
		if req.Mode == RevealPrivate {
			if sess.owners[card.Position] != req.Requester || card.Owner != req.Requester {
				return nil, ErrNotOwner
			}
		}
		indices[i] = int(sess.perm[card.Position])
	}

	return &RevealResult{
		Indices:  indices,
		Artifact: revealArtifact(sess.commitment, indices),
	}, nil
}

func (m *Mock) VerifyShuffle(sessionID string, commitment [32]byte, proof []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	return sess.commitment == commitment && bytes.Equal(sess.proof, proof)
}

func (m *Mock) VerifyReveal(sessionID string, indices []int, artifact [32]byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	return revealArtifact(sess.commitment, indices) == artifact
}

func revealArtifact(commitment [32]byte, indices []int) [32]byte {
	buf := make([]byte, 0, 32+len(indices))
	buf = append(buf, commitment[:]...)
	for _, idx := range indices {
		buf = append(buf, uint8(idx))
	}
	return sha256.Sum256(buf)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
