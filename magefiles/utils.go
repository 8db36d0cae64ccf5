//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

// step is one external tool invocation of a target.
type step struct {
	args   []string
	dir    string
	stream bool
}

type stepOption func(*step)

func withArgs(args ...string) stepOption {
	return func(s *step) {
		s.args = append(s.args, args...)
	}
}

// withDir runs the tool from dir instead of the repository root.
func withDir(dir string) stepOption {
	return func(s *step) {
		s.dir = dir
	}
}

func withStream() stepOption {
	return func(s *step) {
		s.stream = true
	}
}

// executeCmd runs the tool and returns its combined output. Output is only
// echoed when streaming or in verbose mode, otherwise it is printed on failure.
func executeCmd(tool string, options ...stepOption) (string, error) {
	s := &step{}
	for _, o := range options {
		o(s)
	}

	where := ""
	if s.dir != "" {
		where = " (in " + s.dir + ")"
	}
	fmt.Printf("> %s %s%s\n", tool, strings.Join(s.args, " "), where)

	var out bytes.Buffer
	cmd := exec.Command(tool, s.args...)
	cmd.Dir = s.dir
	cmd.Stdout, cmd.Stderr = &out, &out
	echo := s.stream || mg.Verbose()
	if echo {
		cmd.Stdout = io.MultiWriter(&out, os.Stdout)
		cmd.Stderr = io.MultiWriter(&out, os.Stderr)
	}

	if err := cmd.Run(); err != nil {
		if !echo {
			fmt.Fprintln(os.Stderr, out.String())
		}
		return out.String(), fmt.Errorf("%s failed: %w", tool, err)
	}
	return out.String(), nil
}
