package main

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(buf)
}

func TestRunStdinToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("# head 1"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if want := "\nhead 1\n======\n"; stdout.String() != want {
		t.Errorf("expected %q, got %q", want, stdout.String())
	}
}

func TestRunOptionFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--anonymous-references"}, strings.NewReader("[a](http://x.org/)"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if want := "\n`a <http://x.org/>`__\n"; stdout.String() != want {
		t.Errorf("expected %q, got %q", want, stdout.String())
	}
}

func TestRunWritesFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.markdown")
	writeFile(t, first, "* one")
	writeFile(t, second, "two")

	var stdout, stderr bytes.Buffer
	if code := run([]string{first, second}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if got, want := readFile(t, filepath.Join(dir, "a.rst")), "\n\n* one\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := readFile(t, filepath.Join(dir, "b.rst")), "\ntwo\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no stdout, got %q", stdout.String())
	}
}

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	writeFile(t, path, "text")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--dry-run", path}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if want := "\ntext\n"; stdout.String() != want {
		t.Errorf("expected %q, got %q", want, stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "a.rst")); !os.IsNotExist(err) {
		t.Errorf("expected no file written, stat err %v", err)
	}
}

func TestRunExistingTarget(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.md")
	target := filepath.Join(dir, "a.rst")
	writeFile(t, path, "new")
	writeFile(t, target, "old")

	var stdout, stderr bytes.Buffer
	if code := run([]string{path}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if got := readFile(t, target); got != "old" {
		t.Errorf("expected existing file kept, got %q", got)
	}

	if code := run([]string{"--overwrite", path}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("unexpected exit code %d: %s", code, stderr.String())
	}
	if got, want := readFile(t, target), "\nnew\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.md")
	present := filepath.Join(dir, "present.md")
	writeFile(t, present, "ok")

	var stdout, stderr bytes.Buffer
	code := run([]string{missing, present}, strings.NewReader(""), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "convert "+missing+":") {
		t.Errorf("expected error for %s, got %q", missing, stderr.String())
	}
	if got, want := readFile(t, filepath.Join(dir, "present.rst")), "\nok\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--nope"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var stderr bytes.Buffer
		c := &cli{
			stdin:  bufio.NewReader(strings.NewReader(tt.answer)),
			stderr: &stderr,
			log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		}
		got, err := c.confirm("a.rst")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("answer %q: expected %v, got %v", tt.answer, tt.want, got)
		}
		if !strings.Contains(stderr.String(), "Overwrite it? [y/N]") {
			t.Errorf("expected prompt, got %q", stderr.String())
		}
	}
}

func TestMayWriteInteractive(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.rst")

	c := &cli{interactive: true, stdin: bufio.NewReader(strings.NewReader("y\n")), stderr: io.Discard}
	ok, err := c.mayWrite(target)
	if err != nil || !ok {
		t.Fatalf("expected missing target to be writable, got %v, %v", ok, err)
	}

	writeFile(t, target, "old")
	ok, err = c.mayWrite(target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected confirmed overwrite")
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a.md", "a.rst"},
		{"dir/guide.markdown", "dir/guide.rst"},
		{"noext", "noext.rst"},
	}
	for _, tt := range tests {
		if got := targetPath(tt.in); got != tt.want {
			t.Errorf("targetPath(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
