package sqlitepath

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ResolveSQLitePath", func() {
	var (
		origHome   string
		origXDG    string
		origSQLite string
		origCwd    string
		homeDir    string
		tmpDir     string
	)

	BeforeEach(func() {
		origHome = os.Getenv("HOME")
		origXDG = os.Getenv("XDG_DATA_HOME")
		origSQLite = os.Getenv("COURSEWISE_SQLITE")
		var err error
		origCwd, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		homeDir = GinkgoT().TempDir()
		tmpDir = GinkgoT().TempDir()
		Expect(os.Setenv("HOME", homeDir)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", "")).To(Succeed())
		Expect(os.Setenv("COURSEWISE_SQLITE", "")).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Setenv("HOME", origHome)).To(Succeed())
		Expect(os.Setenv("XDG_DATA_HOME", origXDG)).To(Succeed())
		Expect(os.Setenv("COURSEWISE_SQLITE", origSQLite)).To(Succeed())
		Expect(os.Chdir(origCwd)).To(Succeed())
	})

	It("returns the override unchanged", func() {
		path, err := ResolveSQLitePath("/tmp/override.sqlite", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/override.sqlite"))
	})

	It("prefers COURSEWISE_SQLITE when set", func() {
		Expect(os.Setenv("COURSEWISE_SQLITE", "/tmp/custom.sqlite")).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom.sqlite"))
	})

	It("resolves ~/.coursewise/coursewise.sqlite when present", func() {
		dbPath := filepath.Join(homeDir, ".coursewise", DefaultFileName)
		Expect(os.MkdirAll(filepath.Dir(dbPath), 0o755)).To(Succeed())
		Expect(os.WriteFile(dbPath, []byte("test"), 0o644)).To(Succeed())

		path, err := ResolveSQLitePath("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(dbPath))
	})

	It("prefers an explicit config directory over existing candidates", func() {
		homePath := filepath.Join(homeDir, ".coursewise", DefaultFileName)
		Expect(os.MkdirAll(filepath.Dir(homePath), 0o755)).To(Succeed())
		Expect(os.WriteFile(homePath, []byte("test"), 0o644)).To(Succeed())

		configDir := filepath.Join(tmpDir, "project")
		path, err := ResolveSQLitePath("", configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(configDir, DefaultFileName)))
	})

	It("uses the config directory", func() {
		configDir := filepath.Join(tmpDir, "cfg")

		path, err := ResolveSQLitePath("", configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(configDir, DefaultFileName)))
		Expect(configDir).To(BeADirectory())
	})
})
