package moderation_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/coursewise/pkg/logger"
	"github.com/papercomputeco/coursewise/pkg/moderation"
	testutils "github.com/papercomputeco/coursewise/pkg/utils/test"
)

var _ = Describe("Gate", func() {
	It("fails open when the provider errors and logs a warning", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		gate := moderation.NewGate(&testutils.MockModerator{Err: moderation.ErrModerationUnavailable}, log)

		res := gate.Check(context.Background(), "anything")
		Expect(res.Flagged).To(BeFalse())
		Expect(res.Categories).To(BeEmpty())
		Expect(gate.ValidateResponse(context.Background(), "anything")).To(BeTrue())

		_ = log.Sync()
		Expect(buf.String()).To(ContainSubstring("allowing content"))
	})

	It("passes through flagged verdicts", func() {
		gate := moderation.NewGate(&testutils.MockModerator{
			Verdict: moderation.Result{Flagged: true, Categories: []string{"violence"}},
		}, zap.NewNop())

		res := gate.Check(context.Background(), "bad")
		Expect(res.Flagged).To(BeTrue())
		Expect(res.Categories).To(ConsistOf("violence"))
		Expect(gate.ValidateResponse(context.Background(), "bad")).To(BeFalse())
	})

	It("passes everything with no provider", func() {
		gate := moderation.NewGate(nil, zap.NewNop())
		Expect(gate.ValidateResponse(context.Background(), "x")).To(BeTrue())
	})
})
