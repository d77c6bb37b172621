package render_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/render"
)

var _ = Describe("Loop", func() {
	It("runs frames until stopped and none afterwards", func() {
		var frames atomic.Int64
		loop := render.NewLoop(200, func() bool {
			frames.Add(1)
			return true
		})
		Expect(loop.Start(context.Background())).To(BeTrue())
		Eventually(frames.Load).Should(BeNumerically(">=", 3))

		loop.Stop()
		after := frames.Load()
		Consistently(frames.Load, 50*time.Millisecond, 5*time.Millisecond).Should(Equal(after))
		Eventually(loop.Done()).Should(BeClosed())
	})

	It("never overlaps invocations", func() {
		var inFlight, overlaps atomic.Int32
		loop := render.NewLoop(1000, func() bool {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return true
		})
		loop.Start(context.Background())
		time.Sleep(30 * time.Millisecond)
		loop.Stop()
		Expect(overlaps.Load()).To(BeZero())
	})

	It("tolerates repeated Stop calls and Stop before Start", func() {
		loop := render.NewLoop(60, func() bool { return true })
		loop.Stop()
		loop.Stop()
		Expect(loop.Start(context.Background())).To(BeFalse())
	})

	It("refuses to start twice", func() {
		loop := render.NewLoop(60, func() bool { return true })
		Expect(loop.Start(context.Background())).To(BeTrue())
		Expect(loop.Start(context.Background())).To(BeFalse())
		loop.Stop()
	})

	It("ends when the frame function returns false", func() {
		var frames atomic.Int64
		loop := render.NewLoop(500, func() bool {
			return frames.Add(1) < 3
		})
		loop.Start(context.Background())
		Eventually(loop.Done()).Should(BeClosed())
		Expect(frames.Load()).To(Equal(int64(3)))
		loop.Stop()
	})

	It("lets the frame function stop its own loop", func() {
		var frames atomic.Int64
		returned := make(chan struct{})
		var loop *render.Loop
		loop = render.NewLoop(200, func() bool {
			if frames.Add(1) == 1 {
				loop.Stop()
				close(returned)
			}
			return true
		})
		Expect(loop.Start(context.Background())).To(BeTrue())

		Eventually(returned, time.Second).Should(BeClosed())
		Eventually(loop.Done(), time.Second).Should(BeClosed())
		Consistently(frames.Load, 30*time.Millisecond, 5*time.Millisecond).Should(Equal(int64(1)))

		// still idempotent from outside
		loop.Stop()
	})

	It("ends when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		loop := render.NewLoop(500, func() bool { return true })
		loop.Start(ctx)
		cancel()
		Eventually(loop.Done()).Should(BeClosed())
		loop.Stop()
	})

	It("drives a scene while resizes and knob changes arrive concurrently", func() {
		params := param.NewController(0, false)
		scene, err := render.NewScene(render.DefaultConfig(), params)
		Expect(err).NotTo(HaveOccurred())
		surf := &render.Recorder{}
		Expect(scene.Mount(surf, 320, 200, 1)).To(BeTrue())

		var frames atomic.Int64
		loop := render.NewLoop(500, func() bool {
			scene.Frame()
			frames.Add(1)
			return true
		})
		loop.Start(context.Background())

		for i := 0; i < 20; i++ {
			scene.Resize(float64(400+i*10), 300, 2)
			params.SetIntensity(float64(i) / 10)
			params.ToggleFrozen()
			time.Sleep(time.Millisecond)
		}
		Eventually(frames.Load).Should(BeNumerically(">=", 5))
		loop.Stop()
		scene.Close()

		Expect(len(scene.Nodes())).To(Equal(54))
	})
})
