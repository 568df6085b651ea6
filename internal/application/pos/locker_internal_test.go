package pos

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestSessionLocker_LiberaEntradas(t *testing.T) {
	l := NewSessionLocker()
	key := entity.SessionKey{TerminalID: "CAJA1", Date: "2026-10-19"}

	unlock := l.Lock(key)
	assert.Equal(t, 1, l.size())
	unlock()
	assert.Equal(t, 0, l.size())

	r1 := l.RLock(key)
	r2 := l.RLock(key)
	assert.Equal(t, 1, l.size())
	r1()
	assert.Equal(t, 1, l.size())
	r2()
	assert.Equal(t, 0, l.size())
}

func TestSessionLocker_ExclusionMutua(t *testing.T) {
	l := NewSessionLocker()
	key := entity.SessionKey{TerminalID: "CAJA1", Date: "2026-10-19"}

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(key)
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			if n > atomic.LoadInt32(&maxInside) {
				atomic.StoreInt32(&maxInside, n)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.size())
}

func TestSessionLocker_CajasIndependientes(t *testing.T) {
	l := NewSessionLocker()
	unlock := l.Lock(entity.SessionKey{TerminalID: "CAJA1", Date: "2026-10-19"})
	defer unlock()

	done := make(chan struct{})
	go func() {
		other := l.Lock(entity.SessionKey{TerminalID: "CAJA2", Date: "2026-10-19"})
		other()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el lock de CAJA2 quedó bloqueado por CAJA1")
	}
}

func TestSessionLocker_LecturaEsperaEscritura(t *testing.T) {
	l := NewSessionLocker()
	key := entity.SessionKey{TerminalID: "CAJA1", Date: "2026-10-19"}
	unlock := l.Lock(key)

	acquired := make(chan struct{})
	go func() {
		r := l.RLock(key)
		close(acquired)
		r()
	}()
	select {
	case <-acquired:
		t.Fatal("lectura concurrente con una mutación en curso")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-acquired
}
