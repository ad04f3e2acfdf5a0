package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/session"
)

// fakeChatter echoes messages back and can be told to fail.
type fakeChatter struct {
	starts   int
	sends    int
	startErr error
	sendErr  error
}

func (f *fakeChatter) StartChat(context.Context) (*gemini.Conversation, error) {
	f.starts++
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &gemini.Conversation{}, nil
}

func (f *fakeChatter) SendMessage(_ context.Context, _ *gemini.Conversation, text string) (llm.Turn, error) {
	f.sends++
	if f.sendErr != nil {
		return llm.Turn{}, f.sendErr
	}
	return llm.AssistantTurn("echo: " + text), nil
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		model *fakeChatter
		store *session.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		model = &fakeChatter{}
		store = session.NewStore(model, session.Config{}, zap.NewNop())
	})

	Describe("GetOrCreate", func() {
		It("creates an empty session on first use", func() {
			sess, err := store.GetOrCreate(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.ID()).To(Equal("user-1"))
			Expect(sess.Len()).To(Equal(0))
			Expect(sess.Handle()).NotTo(BeNil())
			Expect(sess.HeadHash()).To(BeEmpty())
			Expect(model.starts).To(Equal(1))
		})

		It("returns the same session on later calls", func() {
			first, err := store.GetOrCreate(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			second, err := store.GetOrCreate(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(BeIdenticalTo(first))
			Expect(model.starts).To(Equal(1))
			Expect(store.Count()).To(Equal(1))
		})

		It("keeps sessions of different ids apart", func() {
			a, _ := store.GetOrCreate(ctx, "a")
			b, _ := store.GetOrCreate(ctx, "b")

			Expect(a).NotTo(BeIdenticalTo(b))
			Expect(store.Count()).To(Equal(2))
		})

		It("stores nothing when the conversation cannot be started", func() {
			model.startErr = &llm.RemoteServiceError{Op: gemini.OpStartChat, Err: errors.New("unauthorized")}

			_, err := store.GetOrCreate(ctx, "user-1")
			var remoteErr *llm.RemoteServiceError
			Expect(errors.As(err, &remoteErr)).To(BeTrue())

			_, found := store.Get("user-1")
			Expect(found).To(BeFalse())
		})

		It("starts a single conversation for concurrent first visits", func() {
			const visits = 16
			sessions := make([]*session.ChatSession, visits)

			var wg sync.WaitGroup
			for i := range visits {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					sess, err := store.GetOrCreate(ctx, "shared")
					Expect(err).NotTo(HaveOccurred())
					sessions[i] = sess
				}()
			}
			wg.Wait()

			for _, sess := range sessions {
				Expect(sess).To(BeIdenticalTo(sessions[0]))
			}
			Expect(model.starts).To(Equal(1))
		})

		It("keeps a session alive while it is looked up", func() {
			store = session.NewStore(model, session.Config{
				TTL:             300 * time.Millisecond,
				CleanupInterval: 50 * time.Millisecond,
			}, zap.NewNop())
			_, err := store.GetOrCreate(ctx, "poller")
			Expect(err).NotTo(HaveOccurred())

			for range 4 {
				time.Sleep(150 * time.Millisecond)
				_, found := store.Get("poller")
				Expect(found).To(BeTrue())
			}

			time.Sleep(450 * time.Millisecond)
			_, found := store.Get("poller")
			Expect(found).To(BeFalse())
		})

		It("rejects an empty id", func() {
			_, err := store.GetOrCreate(ctx, "")

			var stateErr *llm.InvalidStateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
		})
	})

	Describe("Send", func() {
		var sess *session.ChatSession

		BeforeEach(func() {
			var err error
			sess, err = store.GetOrCreate(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
		})

		It("records the first exchange of a new session", func() {
			reply, err := store.Send(ctx, sess, "Hello")
			Expect(err).NotTo(HaveOccurred())

			Expect(sess.Turns()).To(Equal([]llm.Turn{
				llm.UserTurn("Hello"),
				reply,
			}))
		})

		It("keeps 2N alternating turns in submission order after N exchanges", func() {
			const n = 5
			for i := 0; i < n; i++ {
				_, err := store.Send(ctx, sess, fmt.Sprintf("message %d", i))
				Expect(err).NotTo(HaveOccurred())
			}

			turns := sess.Turns()
			Expect(turns).To(HaveLen(2 * n))
			for i, turn := range turns {
				if i%2 == 0 {
					Expect(turn).To(Equal(llm.UserTurn(fmt.Sprintf("message %d", i/2))))
				} else {
					Expect(turn.Role).To(Equal(llm.RoleAssistant))
				}
			}
		})

		It("keeps each exchange together under concurrent sends", func() {
			const n = 8
			var wg sync.WaitGroup
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := store.Send(ctx, sess, fmt.Sprintf("message %d", i))
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			turns := sess.Turns()
			Expect(turns).To(HaveLen(2 * n))
			for i := 0; i < len(turns); i += 2 {
				Expect(turns[i].Role).To(Equal(llm.RoleUser))
				Expect(turns[i+1]).To(Equal(llm.AssistantTurn("echo: " + turns[i].Text)))
			}
		})

		It("leaves the history unchanged when the send fails", func() {
			_, err := store.Send(ctx, sess, "Hello")
			Expect(err).NotTo(HaveOccurred())
			before := sess.Turns()
			head := sess.HeadHash()

			model.sendErr = &llm.RemoteServiceError{Op: gemini.OpSendMessage, Err: errors.New("quota")}
			_, err = store.Send(ctx, sess, "Again")
			Expect(err).To(HaveOccurred())

			Expect(sess.Turns()).To(Equal(before))
			Expect(sess.HeadHash()).To(Equal(head))
		})

		It("moves the head hash with every exchange", func() {
			_, _ = store.Send(ctx, sess, "Hello")
			first := sess.HeadHash()
			_, _ = store.Send(ctx, sess, "Hello")

			Expect(first).NotTo(BeEmpty())
			Expect(sess.HeadHash()).NotTo(Equal(first))
		})

		It("rejects a nil session", func() {
			_, err := store.Send(ctx, nil, "Hello")

			var stateErr *llm.InvalidStateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(model.sends).To(Equal(0))
		})
	})

	Describe("AppendExchange", func() {
		It("appends the user turn before the assistant turn", func() {
			sess, _ := store.GetOrCreate(ctx, "user-1")

			Expect(store.AppendExchange(sess, "Hi", llm.AssistantTurn("Hello!"))).To(Succeed())
			Expect(sess.Turns()).To(Equal([]llm.Turn{llm.UserTurn("Hi"), llm.AssistantTurn("Hello!")}))
		})

		It("refuses a reply that is not from the assistant", func() {
			sess, _ := store.GetOrCreate(ctx, "user-1")

			err := store.AppendExchange(sess, "Hi", llm.UserTurn("Hello!"))
			var stateErr *llm.InvalidStateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(sess.Len()).To(Equal(0))
		})
	})

	Describe("Drop", func() {
		It("forgets the session so the next visit starts over", func() {
			first, _ := store.GetOrCreate(ctx, "user-1")
			store.Drop("user-1")

			second, err := store.GetOrCreate(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(BeIdenticalTo(first))
			Expect(model.starts).To(Equal(2))
		})
	})
})
