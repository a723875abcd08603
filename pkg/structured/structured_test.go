package structured_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/coursewise/pkg/structured"
)

type card struct {
	Front string  `json:"front"`
	Back  string  `json:"back"`
	Score float64 `json:"score,omitempty"`
}

var _ = Describe("Array", func() {
	It("parses a clean array", func() {
		res := structured.Array[card](`[{"front":"a","back":"b"}]`, nil)
		v, ok := res.Get()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal([]card{{Front: "a", Back: "b"}}))
	})

	It("parses a fenced array with surrounding prose", func() {
		raw := "Here are your cards:\n```json\n[{\"front\":\"x [y]\",\"back\":\"z\"}]\n```\nGood luck!"
		v, ok := structured.Array[card](raw, nil).Get()
		Expect(ok).To(BeTrue())
		Expect(v[0].Front).To(Equal("x [y]"))
	})

	It("is Empty when no array is present", func() {
		res := structured.Array[card]("Sorry, I can't produce questions for this topic.", nil)
		Expect(res.IsParsed()).To(BeFalse())
		Expect(res.Reason()).To(ContainSubstring("no [...] block"))
		Expect(res.OrElse([]card{})).To(BeEmpty())
	})

	It("skips a malformed block and takes the next well-formed one", func() {
		raw := `[not json] then [{"front":"ok","back":"fine"}]`
		v, ok := structured.Array[card](raw, nil).Get()
		Expect(ok).To(BeTrue())
		Expect(v[0].Front).To(Equal("ok"))
	})

	It("repairs comments and leading-decimal numbers", func() {
		raw := `[{"front":"a","back":"b","score":.5} // trailing note
]`
		v, ok := structured.Array[card](raw, nil).Get()
		Expect(ok).To(BeTrue())
		Expect(v[0].Score).To(Equal(0.5))
	})

	It("is Empty when validation fails", func() {
		res := structured.Array[card](`[]`, func(v []card) error {
			if len(v) == 0 {
				return errors.New("no items")
			}
			return nil
		})
		Expect(res.IsParsed()).To(BeFalse())
		Expect(res.Reason()).To(ContainSubstring("no items"))
	})
})

var _ = Describe("Object", func() {
	It("parses nested objects", func() {
		type boss struct {
			Name  string            `json:"name"`
			Extra map[string]string `json:"extra"`
		}
		v, ok := structured.Object[boss](`The boss: {"name":"Entropy","extra":{"k":"v"}}`, nil).Get()
		Expect(ok).To(BeTrue())
		Expect(v.Name).To(Equal("Entropy"))
		Expect(v.Extra).To(HaveKeyWithValue("k", "v"))
	})

	It("is Empty for truncated output", func() {
		res := structured.Object[map[string]any](`{"name": "Entropy", "intro": "unfinished`, nil)
		Expect(res.IsParsed()).To(BeFalse())
	})
})
