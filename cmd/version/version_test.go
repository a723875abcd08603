package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/coursewise/cmd/version"
	"github.com/papercomputeco/coursewise/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	It("prints version, sha and build time", func() {
		var buf bytes.Buffer
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{})

		Expect(cmd.Execute()).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(utils.Version))
		Expect(buf.String()).To(ContainSubstring(utils.Sha))
	})

	It("prints only the version with --short", func() {
		var buf bytes.Buffer
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--short"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(buf.String()).To(Equal(utils.Version + "\n"))
	})
})
