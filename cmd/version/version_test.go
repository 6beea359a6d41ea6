package versioncmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/gemcli/cmd/version"
	"github.com/papercomputeco/gemcli/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	It("prints the build metadata", func() {
		cmd := versioncmder.NewVersionCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(Equal(
			"Version: " + utils.Version + "\nSha: " + utils.Sha + "\nBuilt at: " + utils.Buildtime + "\n",
		))
	})

	It("rejects positional arguments", func() {
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})

		Expect(cmd.Execute()).To(HaveOccurred())
	})
})
