package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/merkle"
)

var _ = Describe("Node", func() {
	Describe("NewNode", func() {
		Context("when creating the first node of a chain", func() {
			It("keeps the given turn as content", func() {
				turn := llm.UserTurn("Hello")
				node := merkle.NewNode(turn, nil)

				Expect(node.Content).To(Equal(turn))
				Expect(node.ParentHash).To(BeNil())
			})

			It("produces consistent hashes for the same turn", func() {
				node1 := merkle.NewNode(llm.UserTurn("Hello"), nil)
				node2 := merkle.NewNode(llm.UserTurn("Hello"), nil)

				Expect(node1.Hash).To(Equal(node2.Hash))
			})

			It("distinguishes the role of otherwise identical text", func() {
				node1 := merkle.NewNode(llm.UserTurn("Hello"), nil)
				node2 := merkle.NewNode(llm.AssistantTurn("Hello"), nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})

			It("produces a SHA-256 hex string", func() {
				node := merkle.NewNode(llm.UserTurn("Hello"), nil)

				Expect(node.Hash).To(MatchRegexp("^[a-f0-9]{64}$"))
			})
		})

		Context("when linking to a parent", func() {
			var parent *merkle.Node

			BeforeEach(func() {
				parent = merkle.NewNode(llm.UserTurn("Hello"), nil)
			})

			It("links the child to the parent via ParentHash", func() {
				child := merkle.NewNode(llm.AssistantTurn("Hi!"), parent)

				Expect(child.ParentHash).NotTo(BeNil())
				Expect(*child.ParentHash).To(Equal(parent.Hash))
			})

			It("produces different hashes for the same turn under different parents", func() {
				other := merkle.NewNode(llm.UserTurn("Hey"), nil)
				child1 := merkle.NewNode(llm.AssistantTurn("Hi!"), parent)
				child2 := merkle.NewNode(llm.AssistantTurn("Hi!"), other)

				Expect(child1.Hash).NotTo(Equal(child2.Hash))
			})
		})
	})

	Describe("Valid", func() {
		It("detects tampered content", func() {
			node := merkle.NewNode(llm.UserTurn("Hello"), nil)
			Expect(node.Valid()).To(BeTrue())

			node.Content = llm.UserTurn("Goodbye")
			Expect(node.Valid()).To(BeFalse())
		})
	})
})
