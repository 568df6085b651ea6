package pos

import (
	"sync"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// SessionLocker serializa operaciones por caja (terminal, día).
// Las mutaciones toman el lock exclusivo y las consultas de agregados el compartido;
// cajas distintas no se bloquean entre sí.
type SessionLocker struct {
	mu    sync.Mutex
	locks map[entity.SessionKey]*sessionLock
}

type sessionLock struct {
	rw   sync.RWMutex
	refs int
}

// NewSessionLocker construye el locker.
func NewSessionLocker() *SessionLocker {
	return &SessionLocker{locks: make(map[entity.SessionKey]*sessionLock)}
}

// Lock toma el lock exclusivo de la caja y devuelve la función de liberación.
func (l *SessionLocker) Lock(key entity.SessionKey) (unlock func()) {
	sl := l.acquire(key)
	sl.rw.Lock()
	return func() {
		sl.rw.Unlock()
		l.release(key)
	}
}

// RLock toma el lock compartido de la caja y devuelve la función de liberación.
func (l *SessionLocker) RLock(key entity.SessionKey) (unlock func()) {
	sl := l.acquire(key)
	sl.rw.RLock()
	return func() {
		sl.rw.RUnlock()
		l.release(key)
	}
}

func (l *SessionLocker) acquire(key entity.SessionKey) *sessionLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl, ok := l.locks[key]
	if !ok {
		sl = &sessionLock{}
		l.locks[key] = sl
	}
	sl.refs++
	return sl
}

// release descarta la entrada cuando nadie la usa.
func (l *SessionLocker) release(key entity.SessionKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl := l.locks[key]
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, key)
	}
}

// size número de cajas con lock vivo.
func (l *SessionLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
