package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/md2rst/internal/convert"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("github.com/dgallion1/md2rst")
}

// cli holds the settings of one invocation.
type cli struct {
	opts        convert.Options
	overwrite   bool
	dryRun      bool
	interactive bool

	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		c           cli
		showVersion bool
		verbose     bool
	)

	flags := pflag.NewFlagSet("md2rst", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&c.overwrite, "overwrite", false, "Overwrite existing .rst files without asking")
	flags.BoolVar(&c.dryRun, "dry-run", false, "Print the result instead of writing .rst files")
	flags.BoolVar(&c.opts.NoUnderscoreEmphasis, "no-underscore-emphasis", false, "Only '*' delimits emphasis")
	flags.BoolVar(&c.opts.ParseRelativeLinks, "parse-relative-links", false, "Render relative links as :doc: or :ref: roles")
	flags.BoolVar(&c.opts.AnonymousReferences, "anonymous-references", false, "Use anonymous references (`text <url>`__)")
	flags.BoolVar(&c.opts.DisableInlineMath, "disable-inline-math", false, "Treat `$...$` as an ordinary code span")
	flags.BoolVar(&c.opts.UseMermaid, "use-mermaid", false, "Render mermaid code blocks as mermaid directives")
	flags.BoolVar(&c.opts.FrontMatter, "front-matter", false, "Render leading YAML front matter as a field list")
	flags.BoolVar(&c.opts.GuessLanguage, "guess-language", false, "Guess the language of unlabeled code blocks")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every written file")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: md2rst [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, Markdown is read from stdin and written to stdout.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	c.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	c.stdin = bufio.NewReader(stdin)
	c.stdout = stdout
	c.stderr = stderr
	c.interactive = isTerminal(stdin)

	inputs := flags.Args()
	if len(inputs) == 0 {
		if err := c.convertStream(); err != nil {
			fmt.Fprintf(stderr, "convert <stdin>: %v\n", err)
			return 1
		}
		return 0
	}

	code := 0
	for _, path := range inputs {
		if err := c.convertFile(path); err != nil {
			fmt.Fprintf(stderr, "convert %s: %v\n", path, err)
			code = 1
		}
	}
	return code
}

func (c *cli) convertStream() error {
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	out, err := convert.Convert(string(data), c.opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.stdout, out)
	return err
}

func (c *cli) convertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := convert.Convert(string(data), c.opts)
	if err != nil {
		return err
	}
	if c.dryRun {
		_, err = io.WriteString(c.stdout, out)
		return err
	}

	target := targetPath(path)
	ok, err := c.mayWrite(target)
	if err != nil {
		return err
	}
	if !ok {
		c.log.Warn("skipped existing file", "file", target)
		return nil
	}
	if err := os.WriteFile(target, []byte(out), 0o644); err != nil {
		return err
	}
	c.log.Info("wrote", "file", target, "size", humanize.Bytes(uint64(len(out))))
	return nil
}

// mayWrite reports whether target can be written. An existing file is kept
// unless --overwrite is set or an interactive user agrees.
func (c *cli) mayWrite(target string) (bool, error) {
	_, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if c.overwrite {
		return true, nil
	}
	if !c.interactive {
		return false, nil
	}
	return c.confirm(target)
}

func (c *cli) confirm(target string) (bool, error) {
	fmt.Fprintf(c.stderr, "%s already exists. Overwrite it? [y/N] ", target)
	answer, err := c.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// targetPath replaces the extension of path with ".rst".
func targetPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".rst"
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
