package embedcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Embed Command", func() {
	var (
		server *httptest.Server
		path   string
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"embedding":{"values":[0.5,-0.25,1]}}`)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	run := func(args ...string) string {
		out := &bytes.Buffer{}
		cmd := NewEmbedCmd()
		cmd.SetOut(out)
		cmd.SetArgs(append([]string{"--api-key", "test-key", "--base-url", server.URL}, args...))
		Expect(cmd.ExecuteContext(context.Background())).To(Succeed())
		return out.String()
	}

	It("prints the vector as a JSON array", func() {
		out := run("hello", "world")

		Expect(path).To(HaveSuffix(":embedContent"))
		var values []float32
		Expect(json.Unmarshal([]byte(strings.TrimSpace(out)), &values)).To(Succeed())
		Expect(values).To(Equal([]float32{0.5, -0.25, 1}))
	})

	It("includes the model with --json", func() {
		out := run("--json", "hello")

		var result struct {
			Model  string
			Values []float32
		}
		Expect(json.Unmarshal([]byte(strings.TrimSpace(out)), &result)).To(Succeed())
		Expect(result.Model).NotTo(BeEmpty())
		Expect(result.Values).To(HaveLen(3))
	})
})
