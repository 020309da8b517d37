// Package board models a status board: a closed set of columns holding
// ordered cards, where a card's column is derived from a status enum value.
// Moves are optimistic and two-phase: applied locally as pending, then
// committed once the authoritative status write succeeds, or reverted to
// the exact source position when it fails.
package board

import (
	"context"
	"errors"
	"fmt"
)

// Column is one status value of the backing enum.
type Column string

// Item is a card on the board. Payload is opaque to the board and travels
// with the card across moves.
type Item struct {
	ID      string
	Column  Column
	Payload any
}

// MoveState tracks the two-phase protocol.
type MoveState int

const (
	StatePending MoveState = iota + 1
	StateCommitted
	StateReverted
)

var (
	// ErrUnknownItem: the moved item is not present in any column.
	ErrUnknownItem = errors.New("board: unknown item")
)

// Board holds column membership for one board instance. It is built per
// snapshot and is not safe for concurrent use.
type Board struct {
	columns []Column
	known   map[Column]bool
	items   map[Column][]Item
}

// New partitions items into columns by their current status. Order within a
// column is the order items were received. Items whose column is outside
// the closed set are dropped.
func New(columns []Column, items []Item) *Board {
	b := &Board{
		columns: append([]Column(nil), columns...),
		known:   make(map[Column]bool, len(columns)),
		items:   make(map[Column][]Item, len(columns)),
	}
	for _, col := range columns {
		b.known[col] = true
		b.items[col] = nil
	}
	for _, it := range items {
		if b.known[it.Column] {
			b.items[it.Column] = append(b.items[it.Column], it)
		}
	}
	return b
}

// Columns returns the column set in board order.
func (b *Board) Columns() []Column {
	return append([]Column(nil), b.columns...)
}

// Items returns a copy of one column's ordered cards.
func (b *Board) Items(col Column) []Item {
	return append([]Item(nil), b.items[col]...)
}

// Locate finds the column and index currently holding id.
func (b *Board) Locate(id string) (Column, int, bool) {
	for _, col := range b.columns {
		for i, it := range b.items[col] {
			if it.ID == id {
				return col, i, true
			}
		}
	}
	return "", 0, false
}

// resolveDestination maps dest to a column: a column id wins, otherwise an
// item id resolves to its containing column. Empty result means the drop
// landed outside the board.
func (b *Board) resolveDestination(dest string) (Column, bool) {
	if b.known[Column(dest)] {
		return Column(dest), true
	}
	if col, _, ok := b.Locate(dest); ok {
		return col, true
	}
	return "", false
}

// Move is one in-flight (or settled) card move.
type Move struct {
	board     *Board
	ItemID    string
	From      Column
	To        Column
	fromIndex int
	state     MoveState
}

// State returns the move's phase.
func (m *Move) State() MoveState { return m.state }

// Begin applies a move optimistically: the item leaves its source column
// and is appended to the destination, status rewritten, and the move is
// recorded as pending with its source position.
//
// A destination resolving to the source column, or not resolving at all,
// is a no-op: Begin returns (nil, nil) and the board is unchanged. An
// unknown item is a precondition failure.
func (b *Board) Begin(itemID, dest string) (*Move, error) {
	from, idx, ok := b.Locate(itemID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}

	to, ok := b.resolveDestination(dest)
	if !ok || to == from {
		return nil, nil
	}

	item := b.items[from][idx]
	b.items[from] = append(b.items[from][:idx], b.items[from][idx+1:]...)
	item.Column = to
	b.items[to] = append(b.items[to], item)

	return &Move{
		board:     b,
		ItemID:    itemID,
		From:      from,
		To:        to,
		fromIndex: idx,
		state:     StatePending,
	}, nil
}

// Commit settles a pending move as confirmed.
func (m *Move) Commit() {
	if m.state == StatePending {
		m.state = StateCommitted
	}
}

// Revert undoes a pending move: the card returns to its source column at
// its original index and its status is restored.
func (m *Move) Revert() {
	if m.state != StatePending {
		return
	}
	b := m.board

	for i, it := range b.items[m.To] {
		if it.ID == m.ItemID {
			b.items[m.To] = append(b.items[m.To][:i], b.items[m.To][i+1:]...)
			it.Column = m.From
			src := b.items[m.From]
			idx := m.fromIndex
			if idx > len(src) {
				idx = len(src)
			}
			src = append(src, Item{})
			copy(src[idx+1:], src[idx:])
			src[idx] = it
			b.items[m.From] = src
			break
		}
	}
	m.state = StateReverted
}

// CommitFunc persists the authoritative status change for one item.
type CommitFunc func(ctx context.Context, itemID string, status Column) error

// Syncer drives the two-phase protocol against a store.
type Syncer struct {
	Board  *Board
	Commit CommitFunc
}

// Move performs an optimistic move and reconciles it with the store: the
// write succeeding commits the move; the write failing reverts it and the
// error is surfaced. No-ops return (nil, nil) without touching the store.
func (s *Syncer) Move(ctx context.Context, itemID, dest string) (*Move, error) {
	m, err := s.Board.Begin(itemID, dest)
	if err != nil || m == nil {
		return nil, err
	}

	if err := s.Commit(ctx, m.ItemID, m.To); err != nil {
		m.Revert()
		return m, err
	}

	m.Commit()
	return m, nil
}
