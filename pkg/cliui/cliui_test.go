package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/speakmcp/speakmcp-cli/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints a check mark and elapsed time on success", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Connecting", func() error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("✓ Connecting ("))
		Expect(buf.String()).To(HaveSuffix(")\n"))
	})

	It("returns the error and prints a cross", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Connecting", func() error { return errors.New("refused") })
		Expect(err).To(MatchError("refused"))
		Expect(buf.String()).To(ContainSubstring("✗ Connecting"))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds under a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses tenths of seconds otherwise", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("Truncate", func() {
	DescribeTable("fits the display width",
		func(in string, width int, expected string) {
			Expect(cliui.Truncate(in, width)).To(Equal(expected))
		},
		Entry("short", "short", 10, "short"),
		Entry("exact", "12345", 5, "12345"),
		Entry("long", strings.Repeat("a", 61), 60, strings.Repeat("a", 57)+"..."),
		Entry("newlines", "one\ntwo", 20, "one two"),
	)

	It("measures wide runes by cells", func() {
		out := cliui.Truncate("日本語のテキストです", 10)
		Expect(cliui.Width(out)).To(BeNumerically("<=", 10))
		Expect(out).To(HaveSuffix("..."))
	})
})

var _ = Describe("PrintJSON", func() {
	It("writes indented JSON", func() {
		var buf bytes.Buffer
		Expect(cliui.PrintJSON(&buf, map[string]any{"name": "github", "enabled": true})).To(Succeed())
		Expect(buf.String()).To(Equal("{\n  \"enabled\": true,\n  \"name\": \"github\"\n}\n"))
	})

	It("fails on unencodable values", func() {
		var buf bytes.Buffer
		Expect(cliui.PrintJSON(&buf, make(chan int))).To(MatchError(ContainSubstring("encoding json")))
	})
})

var _ = Describe("Table", func() {
	It("prints headers, a rule, and rows", func() {
		var buf bytes.Buffer
		err := cliui.Table(&buf, []string{"NAME", "STATUS"}, [][]string{
			{"github", "connected"},
			{"filesystem", ""},
		})
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(4))
		Expect(lines[0]).To(MatchRegexp(`^NAME\s+STATUS`))
		Expect(lines[1]).To(ContainSubstring("─"))
		Expect(lines[2]).To(MatchRegexp(`^github\s+connected`))
		Expect(lines[3]).To(MatchRegexp(`^filesystem\s+-`))
	})

	It("prints a placeholder when empty", func() {
		var buf bytes.Buffer
		Expect(cliui.Table(&buf, []string{"NAME"}, nil)).To(Succeed())
		Expect(buf.String()).To(Equal(cliui.NoData + "\n"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders without escape sequences when color is off", func() {
		out, err := cliui.RenderMarkdown("# Title\n\nSome **bold** text")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Title"))
		Expect(out).To(ContainSubstring("bold"))
		Expect(out).NotTo(ContainSubstring("\x1b["))
	})
})

var _ = Describe("FormatTimestamp", func() {
	It("renders zero as a dash", func() {
		Expect(cliui.FormatTimestamp(0)).To(Equal("-"))
	})

	It("formats milliseconds", func() {
		ts := time.Date(2026, 1, 2, 3, 4, 0, 0, time.Local).UnixMilli()
		Expect(cliui.FormatTimestamp(ts)).To(Equal("2026-01-02 03:04"))
	})
})

var _ = Describe("SetColor", func() {
	AfterEach(func() {
		cliui.SetColor(false)
	})

	It("disables styling", func() {
		cliui.SetColor(false)
		Expect(cliui.ColorEnabled()).To(BeFalse())
		Expect(cliui.NameStyle.Render("x")).To(Equal("x"))
	})
})
