// +build integration

package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// declareProduct lays out a minimal installed product on disk (a
// prodDir with ups/<product>.table) so the scratch stack has something
// real for `declare`/`setup` to point at.
func declareProduct(t *testing.T, prodDir, product, tableBody string) {
	t.Helper()
	upsDir := filepath.Join(prodDir, "ups")
	if err := os.MkdirAll(upsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(upsDir, product+".table"), []byte(tableBody), 0o644); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, ctx context.Context, env []string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.CommandContext(ctx, "eups", args...)
	cmd.Env = env
	output, _ := cmd.CombinedOutput()
	return string(output), cmd.ProcessState.ExitCode()
}

func TestCLI(t *testing.T) {
	type step struct {
		args             []string
		expectedExitCode int
		wantContains     string
	}

	testCases := map[string]struct {
		setup func(t *testing.T, stack string)
		steps []step
	}{
		"declare and list": {
			setup: func(t *testing.T, stack string) {
				declareProduct(t, filepath.Join(stack, "products", "foo"), "foo", "")
			},
			steps: []step{
				{args: []string{"declare", "foo", "1.0", ""}, expectedExitCode: 0},
				{args: []string{"list", "foo"}, expectedExitCode: 0, wantContains: "foo"},
			},
		},
		"setup exports table actions": {
			setup: func(t *testing.T, stack string) {
				declareProduct(t, filepath.Join(stack, "products", "bar"), "bar",
					"Group:\n  Flavor = ANY\nCommon:\n  envSet(GREETING, hello)\nEnd:\n")
			},
			steps: []step{
				{args: []string{"declare", "bar", "2.0", ""}, expectedExitCode: 0},
				{args: []string{"setup", "bar", "2.0"}, expectedExitCode: 0, wantContains: "GREETING"},
			},
		},
		"setup of unknown product fails with resolution exit code": {
			steps: []step{
				{args: []string{"setup", "nonexistent"}, expectedExitCode: 3},
			},
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			if deadline, ok := t.Deadline(); ok {
				var cancel context.CancelFunc
				ctx, cancel = context.WithDeadline(ctx, deadline)
				defer cancel()
			}

			stack := t.TempDir()
			home := t.TempDir()
			if tc.setup != nil {
				tc.setup(t, stack)
			}
			env := append(os.Environ(),
				"EUPS_PATH="+stack,
				"HOME="+home,
				"EUPS_FLAVOR=ANY",
			)

			for _, step := range tc.steps {
				args := make([]string, len(step.args))
				copy(args, step.args)
				for i, a := range args {
					if a == "" {
						args[i] = filepath.Join(stack, "products", args[1])
					}
				}

				t0 := time.Now()
				output, code := run(t, ctx, env, args...)
				if code != step.expectedExitCode {
					t.Errorf("%v: exit code = %d, want %d\noutput:\n%s", args, code, step.expectedExitCode, output)
				}
				if step.wantContains != "" && !strings.Contains(output, step.wantContains) {
					t.Errorf("%v: output = %q, want substring %q", args, output, step.wantContains)
				}
				t.Logf("'eups %s' finished in %.3fs", strings.Join(args, " "), time.Since(t0).Seconds())
			}
		})
	}
}
