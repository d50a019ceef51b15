package memory

import (
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("keyedMutex", func() {
	It("serializes holders of the same key", func() {
		k := newKeyedMutex()

		var inside, peak int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := k.Lock("u1")
				n := atomic.AddInt32(&inside, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				atomic.AddInt32(&inside, -1)
				unlock()
			}()
		}
		wg.Wait()

		Expect(atomic.LoadInt32(&peak)).To(Equal(int32(1)))
	})

	It("does not block different keys", func() {
		k := newKeyedMutex()
		unlockA := k.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := k.Lock("b")
			unlock()
			close(done)
		}()
		Eventually(done).Should(BeClosed())
	})

	It("forgets keys once released", func() {
		k := newKeyedMutex()
		unlock := k.Lock("u1")
		Expect(k.size()).To(Equal(1))
		unlock()
		Expect(k.size()).To(Equal(0))
	})
})
