package mockapi

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownUser        = errors.New("unknown user")
)

// Message is one transcript line kept for a user
type Message struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps users and their transcripts in memory
type Store struct {
	mu          sync.RWMutex
	users       map[string][]byte
	transcripts map[string][]Message
	nextID      int
	cost        int
}

// NewStore creates an empty store hashing passwords at bcrypt's default cost
func NewStore() *Store {
	return newStoreWithCost(bcrypt.DefaultCost)
}

func newStoreWithCost(cost int) *Store {
	return &Store{
		users:       make(map[string][]byte),
		transcripts: make(map[string][]Message),
		nextID:      1,
		cost:        cost,
	}
}

// AddUser registers a new user
func (s *Store) AddUser(username, password string) error {
	// Hash outside the lock, bcrypt is slow on purpose
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return ErrUserExists
	}
	s.users[username] = hash
	return nil
}

// Authenticate checks a username and password pair
func (s *Store) Authenticate(username, password string) error {
	s.mu.RLock()
	hash, exists := s.users[username]
	s.mu.RUnlock()

	if !exists {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HasUser reports whether username is registered
func (s *Store) HasUser(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.users[username]
	return exists
}

// Append adds messages to a user's transcript, assigning IDs and timestamps
func (s *Store) Append(username string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; !exists {
		return ErrUnknownUser
	}

	now := time.Now()
	for _, msg := range msgs {
		msg.ID = s.nextID
		s.nextID++
		if msg.Timestamp.IsZero() {
			msg.Timestamp = now
		}
		s.transcripts[username] = append(s.transcripts[username], msg)
	}
	return nil
}

// Transcript returns a copy of a user's messages
func (s *Store) Transcript(username string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Message, len(s.transcripts[username]))
	copy(result, s.transcripts[username])
	return result
}
