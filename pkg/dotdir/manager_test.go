package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	chdir := func(dir string) {
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { os.Chdir(origDir) })
	}

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o700)))
		})

		It("returns the override dir even when a local .speakmcp dir exists", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".speakmcp"), 0o755)).To(Succeed())
			chdir(tmpDir)

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .speakmcp dir when it exists and no override is provided", func() {
			local := filepath.Join(tmpDir, ".speakmcp")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())
			chdir(tmpDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
		})

		It("falls back to the user config directory", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())
			chdir(emptyDir)

			xdg := filepath.Join(tmpDir, "xdg")
			GinkgoT().Setenv("XDG_CONFIG_HOME", xdg)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(xdg, "speakmcp")))
		})
	})

	Describe("Resolve", func() {
		It("does not create the directory", func() {
			dir := filepath.Join(tmpDir, "not-yet")
			result, err := m.Resolve(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			_, err = os.Stat(dir)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("last conversation", func() {
		It("returns nil when nothing was recorded", func() {
			state, err := m.LoadLastConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips the conversation id", func() {
			Expect(m.SaveLastConversation(&dotdir.LastConversation{
				ID:     "conv-42",
				Server: "http://localhost:3210/v1",
			}, tmpDir)).To(Succeed())

			state, err := m.LoadLastConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.ID).To(Equal("conv-42"))
			Expect(state.Server).To(Equal("http://localhost:3210/v1"))
			Expect(state.UpdatedAt).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("rejects an empty id", func() {
			Expect(m.SaveLastConversation(&dotdir.LastConversation{}, tmpDir)).NotTo(Succeed())
			Expect(m.SaveLastConversation(nil, tmpDir)).NotTo(Succeed())
		})

		It("clears the recorded conversation", func() {
			Expect(m.SaveLastConversation(&dotdir.LastConversation{ID: "c"}, tmpDir)).To(Succeed())
			Expect(m.ClearLastConversation(tmpDir)).To(Succeed())

			state, err := m.LoadLastConversation(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())

			// clearing twice is fine
			Expect(m.ClearLastConversation(tmpDir)).To(Succeed())
		})

		It("reports corrupt state", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "last_conversation.json"), []byte("{"), 0o600)).To(Succeed())
			_, err := m.LoadLastConversation(tmpDir)
			Expect(err).To(MatchError(ContainSubstring("parsing last conversation")))
		})
	})
})
