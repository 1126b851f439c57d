// Package mpc delegates card secrecy to a multi-party computation
// network. The rules engine never sees plaintext cards between the
// shuffle and an authorized reveal; it holds only encrypted card
// references, a deck commitment and a session cursor.
package mpc

import (
	"context"
	"errors"

	"github.com/abrahamanavhoeba-alt/arcium-poker/internal/deck"
)

var (
	ErrNotEnoughEntropy  = errors.New("shuffle requires entropy from at least two players")
	ErrEntropyMismatch   = errors.New("entropy contributions must match seated players")
	ErrUnknownSession    = errors.New("unknown deck session")
	ErrInvalidPosition   = errors.New("deck position out of range")
	ErrCardAlreadyDealt  = errors.New("card already dealt from this session")
	ErrNotOwner          = errors.New("requester does not own this card")
	ErrProtocolFailed    = errors.New("mpc protocol failed")
	ErrDeckExhausted     = errors.New("deck session exhausted")
	ErrSessionNotStarted = errors.New("deck session not initialized")
)

// ShuffleRequest asks the network to produce a shuffled deck bound to a
// game. Entropy carries one contribution per seated player, in seat
// order, so that no strict subset of players can predict the result.
type ShuffleRequest struct {
	GameID  string
	Players []string
	Entropy [][32]byte
}

// ShuffleResult identifies the deck session the network created. The
// permutation itself stays inside the network; the commitment binds it
// so a later reveal can be checked against the shuffle.
type ShuffleResult struct {
	SessionID  string
	Commitment [32]byte
	Proof      []byte
}

// DealRequest asks for the card at a deck position to be encrypted to a
// recipient. Board cards are dealt to BoardOwner.
type DealRequest struct {
	SessionID string
	Position  int
	Owner     string
}

// BoardOwner marks community cards, which any party may have revealed
// through a quorum reveal.
const BoardOwner = "board"

// EncryptedCard is an opaque reference to a dealt card. Only the owner
// (private reveal) or a network quorum (showdown reveal) can recover
// the underlying card index.
type EncryptedCard struct {
	SessionID  string
	Position   int
	Ciphertext [32]byte
	KeyShard   [32]byte
	Owner      string
}

// RevealMode selects who may decrypt.
type RevealMode int

const (
	// RevealPrivate decrypts for the card owner only.
	RevealPrivate RevealMode = iota
	// RevealQuorum threshold-decrypts for showdown and board cards.
	RevealQuorum
)

func (m RevealMode) String() string {
	if m == RevealPrivate {
		return "private"
	}
	return "quorum"
}

// RevealRequest asks for one or more encrypted cards to be decrypted.
type RevealRequest struct {
	SessionID string
	Mode      RevealMode
	Requester string
	Cards     []EncryptedCard
}

// RevealResult carries the decrypted card indices, in request order,
// plus the artifact tying the reveal back to the shuffle commitment.
type RevealResult struct {
	Indices  []int
	Artifact [32]byte
}

// Cards decodes the revealed indices.
func (r *RevealResult) Cards() ([]deck.Card, error) {
	cards := make([]deck.Card, len(r.Indices))
	for i, idx := range r.Indices {
		c, err := deck.FromIndex(idx)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}

// Backend is the card-secrecy protocol. Implementations: Client talks
// to a real MPC node cluster, Mock computes everything in process for
// tests and local play. The engine selects one at construction and
// never branches on which it got.
//
// VerifyShuffle and VerifyReveal return false rather than an error:
// a failed verification is a security event for the caller to policy,
// not a fault in the engine.
type Backend interface {
	Shuffle(ctx context.Context, req ShuffleRequest) (*ShuffleResult, error)
	Deal(ctx context.Context, req DealRequest) (*EncryptedCard, error)
	Reveal(ctx context.Context, req RevealRequest) (*RevealResult, error)
	VerifyShuffle(sessionID string, commitment [32]byte, proof []byte) bool
	VerifyReveal(sessionID string, indices []int, artifact [32]byte) bool
}
