package bot

import (
	"sync"

	"klondike/internal/domain"
)

const defaultPoolSize = 1024

// Pool keeps one brain per game, so strategies with memory remember the
// positions a game already went through between calls.
type Pool struct {
	level BotLevel
	size  int

	mu    sync.Mutex
	seats map[string]*seat
}

type seat struct {
	mu    sync.Mutex
	brain Brain
}

// NewPool returns a pool building brains of level. size caps how many games
// are remembered at once; zero means the default.
func NewPool(level BotLevel, size int) (*Pool, error) {
	if _, err := NewBrain(level); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultPoolSize
	}
	return &Pool{level: level, size: size, seats: make(map[string]*seat)}, nil
}

func (p *Pool) seatFor(gameID string) *seat {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.seats[gameID]; ok {
		return s
	}
	if len(p.seats) >= p.size {
		// Evict any game; it starts over with an empty memory.
		for id := range p.seats {
			delete(p.seats, id)
			break
		}
	}
	b, _ := NewBrain(p.level)
	s := &seat{brain: b}
	p.seats[gameID] = s
	return s
}

// Hint asks the game's brain for its next move.
func (p *Pool) Hint(gameID string, state domain.GameState) (domain.Move, bool, error) {
	s := p.seatFor(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return Hint(s.brain, state)
}

// PlayOut lets the game's brain play up to limit moves from state.
func (p *Pool) PlayOut(gameID string, state domain.GameState, limit int) ([]Step, error) {
	s := p.seatFor(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	agent := &Agent{Strategy: s.brain}
	return agent.Run(state, limit)
}

// Forget drops the brain of a finished game.
func (p *Pool) Forget(gameID string) {
	p.mu.Lock()
	delete(p.seats, gameID)
	p.mu.Unlock()
}

// Len reports how many games currently hold a brain.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seats)
}
