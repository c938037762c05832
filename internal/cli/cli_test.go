package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubPrompter struct {
	answers  []int
	messages []string
	options  [][]string
	err      error
}

func (s *stubPrompter) Select(_ context.Context, message string, options, _ []string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.messages = append(s.messages, message)
	s.options = append(s.options, options)
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func run(t *testing.T, env *Env, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env.Stdout, env.Stderr = stdout, stderr
	if env.Stdin == nil {
		env.Stdin = strings.NewReader("")
	}
	cmd := NewRootCommand(env)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRenderTextFromStdin(t *testing.T) {
	t.Parallel()

	env := &Env{Stdin: strings.NewReader(`[{"facility_name": "HQ", "address": null}]`)}
	out, _, err := run(t, env, "render", "--type", "facility_basic", "--data", "-", "--format", "text")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"HQ", "Not set"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderWithTableConfigToFile(t *testing.T) {
	t.Parallel()

	data := writeFile(t, "rows.yaml", "- { vendor: Acme, fee: 100 }\n- { vendor: Bolt, fee: 200 }\n")
	tableConfig := writeFile(t, "table.yaml", "columns:\n  - { key: vendor, label: Vendor }\n  - { key: fee, label: Fee }\nlayout:\n  type: standard_table\n  show_headers: true\n")
	output := filepath.Join(t.TempDir(), "out.html")

	_, stderr, err := run(t, &Env{}, "render",
		"--data", data, "--table-config", tableConfig, "--output", output, "--table-id", "contracts")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(stderr, "table written to") {
		t.Fatalf("expected summary on stderr, got %q", stderr)
	}
	html, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, want := range []string{`data-table-id="contracts"`, "Vendor", "Acme", "Bolt"} {
		if !strings.Contains(string(html), want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestRenderInteractive(t *testing.T) {
	t.Parallel()

	prompter := &stubPrompter{answers: []int{0, 2}}
	env := &Env{Prompter: prompter}
	out, _, err := run(t, env, "render", "--interactive")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Table type", "Output format"}, prompter.messages); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"html", "text", "json"}, prompter.options[1]); diff != "" {
		t.Fatalf("format options mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected JSON output, got:\n%s", out)
	}
}

func TestRenderInteractiveAborted(t *testing.T) {
	t.Parallel()

	env := &Env{Prompter: &stubPrompter{err: ErrAborted}}
	_, _, err := run(t, env, "render", "--interactive")
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, &Env{}, "render", "--format", "pdf")
	if err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestTypesListsPresets(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, &Env{}, "types")
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	for _, want := range []string{"ID", "facility_basic", "Facility master data shown as a detail sheet."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, &Env{}, "classify", "250")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for _, want := range []string{"strategy: virtual_scroll", "chunk_size", "50"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if _, _, err := run(t, &Env{}, "classify", "many"); err == nil {
		t.Fatalf("expected error for negative row count")
	}
}
