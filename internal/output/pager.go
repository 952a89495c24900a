// Package output formats and pages the text that versio's CLI commands
// print: project tables, changelogs, plan summaries.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	terminfo "github.com/xo/terminfo"
	"golang.org/x/term"
)

// NewPager returns a writer that pages its output, preferring the user's
// $PAGER and falling back to an internal, terminfo-driven pager when none
// is available on the PATH.
func NewPager(ti *terminfo.Terminfo) (io.WriteCloser, error) {
	externalPager, err := newExternalPager()
	if err != nil {
		return newInternalPager(ti)
	}
	return externalPager, nil
}

// NewAutoPager is NewPager with the terminfo database loaded from the
// environment, for callers with no Terminfo of their own (versio's CLI
// commands). It falls back to the external pager alone when the local
// terminfo entry can't be loaded.
func NewAutoPager() (io.WriteCloser, error) {
	ti, err := terminfo.LoadFromEnv()
	if err != nil {
		return newExternalPager()
	}
	return NewPager(ti)
}

// externalPager shells out to $PAGER (or more(1)) the way a system pager
// symbiont works: writes are piped to the subprocess's stdin.
type externalPager struct {
	w io.WriteCloser
	c chan error
	o sync.Once
}

func newExternalPager() (*externalPager, error) {
	cmd := os.Getenv("PAGER")
	if cmd == "" {
		cmd = "more"
	}
	if _, err := exec.LookPath(cmd); err != nil {
		return nil, err
	}

	child := exec.Command(cmd)
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	child.Stdin = r
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	c := make(chan error)
	pager := &externalPager{w: w, c: c}
	go func() {
		defer func() {
			close(c)
			pager.close()
		}()
		pager.c <- child.Run()
	}()

	return pager, nil
}

func (pager *externalPager) Write(p []byte) (int, error) { return pager.w.Write(p) }

func (pager *externalPager) close() error {
	var err error
	pager.o.Do(func() { err = pager.w.Close() })
	return err
}

// Close finalizes an external pager, waiting for the subprocess to exit.
func (pager *externalPager) Close() error {
	pager.close()
	return <-pager.c
}

// internalPager uses no subprocess, paging directly through terminfo escapes.
type internalPager struct {
	h     int
	b     []byte
	lines chan []byte
	done  chan struct{}
}

func newInternalPager(ti *terminfo.Terminfo) (io.WriteCloser, error) {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return nil, err
	}
	if height < 2 {
		height = 24
	}

	pager := &internalPager{
		h:     height,
		lines: make(chan []byte, 1000),
		done:  make(chan struct{}),
	}

	go func() {
		defer close(pager.done)
		for {
			for i := 0; i < pager.h-1; i++ {
				line, ok := <-pager.lines
				if !ok {
					return
				}
				os.Stdout.Write(line)
			}
			ti.Fprintf(os.Stdout, terminfo.EnterReverseMode)
			os.Stdout.WriteString("-- Press Enter for more--")
			ti.Fprintf(os.Stdout, terminfo.ExitAttributeMode)
			fmt.Scanln()
			ti.Fprintf(os.Stdout, terminfo.CursorUp)
			ti.Fprintf(os.Stdout, terminfo.ClrEol)
		}
	}()

	return pager, nil
}

func (pager *internalPager) Write(b []byte) (int, error) {
	pager.b = append(pager.b, b...)
	parts := bytes.SplitAfter(pager.b, []byte("\n"))
	for _, line := range parts {
		if bytes.HasSuffix(line, []byte("\n")) {
			pager.lines <- line
		} else {
			pager.b = line
			return len(b) - len(pager.b), nil
		}
	}
	pager.b = pager.b[:0]
	return len(b), nil
}

func (pager *internalPager) Close() error {
	close(pager.lines)
	<-pager.done
	return nil
}
