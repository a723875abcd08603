package coursewisecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	coursewisecmder "github.com/papercomputeco/coursewise/cmd/coursewise"
)

var _ = Describe("NewCoursewiseCmd", func() {
	It("registers every subcommand", func() {
		cmd := coursewisecmder.NewCoursewiseCmd()

		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("init", "config", "ingest", "ask", "serve", "version"))
	})

	It("exposes global debug and config-dir flags", func() {
		cmd := coursewisecmder.NewCoursewiseCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("requires topic and course for ingest", func() {
		cmd := coursewisecmder.NewCoursewiseCmd()
		cmd.SetArgs([]string{"ingest", "."})
		Expect(cmd.Execute()).To(MatchError(ContainSubstring("required flag")))
	})

	It("wires provider flags into serve", func() {
		cmd := coursewisecmder.NewCoursewiseCmd()
		serve, _, err := cmd.Find([]string{"serve"})
		Expect(err).NotTo(HaveOccurred())
		Expect(serve.Flags().Lookup("generation-provider")).NotTo(BeNil())
		Expect(serve.Flags().Lookup("listen").DefValue).To(Equal(":8081"))
	})
})
