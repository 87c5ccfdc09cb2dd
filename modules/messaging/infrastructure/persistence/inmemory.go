package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AlagappanMk24/Gymunity/modules/messaging/domain"
	"github.com/AlagappanMk24/Gymunity/modules/shared/types"
)

// Store keeps threads and messages in memory for tests and local
// development. It implements both repositories so deleting a thread can
// drop its messages.
type Store struct {
	mu       sync.RWMutex
	threads  map[types.ThreadID]domain.ThreadState
	messages map[types.MessageID]domain.MessageState
}

func NewStore() *Store {
	return &Store{
		threads:  make(map[types.ThreadID]domain.ThreadState),
		messages: make(map[types.MessageID]domain.MessageState),
	}
}

// Threads returns the thread repository view of the store.
func (s *Store) Threads() domain.ThreadRepository { return inMemoryThreads{s} }

// Messages returns the message repository view of the store.
func (s *Store) Messages() domain.MessageRepository { return inMemoryMessages{s} }

type inMemoryThreads struct{ s *Store }

func (r inMemoryThreads) Save(_ context.Context, t *domain.Thread) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.threads[t.ID()] = t.State()
	return nil
}

func (r inMemoryThreads) FindByID(_ context.Context, id types.ThreadID) (*domain.Thread, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.threads[id]
	if !ok {
		return nil, domain.ErrThreadNotFound
	}
	return domain.ReconstituteThread(st), nil
}

func (r inMemoryThreads) FindByPair(_ context.Context, clientID types.UserID, trainerID types.TrainerID) (*domain.Thread, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.threads {
		if st.ClientID == clientID && st.TrainerID == trainerID {
			return domain.ReconstituteThread(st), nil
		}
	}
	return nil, domain.ErrThreadNotFound
}

func activity(st domain.ThreadState) time.Time {
	if st.LastMessageAt != nil {
		return *st.LastMessageAt
	}
	return st.CreatedAt
}

func (r inMemoryThreads) ListForUser(_ context.Context, userID types.UserID, page types.Page) ([]domain.ChatSummary, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found []domain.ThreadState
	for _, st := range r.s.threads {
		if st.ClientID == userID || st.TrainerUserID == userID {
			found = append(found, st)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].IsPriority != found[j].IsPriority {
			return found[i].IsPriority
		}
		return activity(found[i]).After(activity(found[j]))
	})
	start := min(page.Offset(), len(found))
	end := min(start+page.Size, len(found))

	out := make([]domain.ChatSummary, 0, end-start)
	for _, st := range found[start:end] {
		sum := domain.ChatSummary{Thread: domain.ReconstituteThread(st)}
		var last *domain.MessageState
		for _, m := range r.s.messages {
			if m.ThreadID != st.ID {
				continue
			}
			if m.RecipientID == userID && !m.IsRead {
				sum.UnreadCount++
			}
			if last == nil || m.CreatedAt.After(last.CreatedAt) {
				last = &m
			}
		}
		if last != nil {
			sum.LastMessage = domain.ReconstituteMessage(*last)
		}
		out = append(out, sum)
	}
	return out, len(found), nil
}

func (r inMemoryThreads) deleteLocked(id types.ThreadID) {
	delete(r.s.threads, id)
	for mid, m := range r.s.messages {
		if m.ThreadID == id {
			delete(r.s.messages, mid)
		}
	}
}

func (r inMemoryThreads) Delete(_ context.Context, id types.ThreadID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.threads[id]; !ok {
		return domain.ErrThreadNotFound
	}
	r.deleteLocked(id)
	return nil
}

func (r inMemoryThreads) DeleteForUser(_ context.Context, userID types.UserID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, st := range r.s.threads {
		if st.ClientID == userID || st.TrainerUserID == userID {
			r.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

type inMemoryMessages struct{ s *Store }

func (r inMemoryMessages) Save(_ context.Context, m *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.messages[m.ID()] = m.State()
	return nil
}

func (r inMemoryMessages) FindByID(_ context.Context, id types.MessageID) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.messages[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return domain.ReconstituteMessage(st), nil
}

func (r inMemoryMessages) ListByThread(_ context.Context, threadID types.ThreadID, page types.Page) ([]*domain.Message, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var found []domain.MessageState
	for _, m := range r.s.messages {
		if m.ThreadID == threadID {
			found = append(found, m)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	start := min(page.Offset(), len(found))
	end := min(start+page.Size, len(found))
	out := make([]*domain.Message, 0, end-start)
	for _, st := range found[start:end] {
		out = append(out, domain.ReconstituteMessage(st))
	}
	return out, len(found), nil
}

func (r inMemoryMessages) MarkThreadRead(_ context.Context, threadID types.ThreadID, reader types.UserID, at time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for id, m := range r.s.messages {
		if m.ThreadID == threadID && m.RecipientID == reader && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &at
			r.s.messages[id] = m
			n++
		}
	}
	return n, nil
}

func (r inMemoryMessages) UnreadCount(_ context.Context, userID types.UserID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, m := range r.s.messages {
		if m.RecipientID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}
