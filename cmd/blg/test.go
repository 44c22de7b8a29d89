package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blg-lang/blg/pkg/pipeline"
)

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run the built-in smoke-test suite",
		Args:  cobra.NoArgs,
		RunE:  runTest,
	}
}

// smokeTest is one self-checking program: main asserts its own behavior
// and returns none on success, so a passing run is simply "no error".
type smokeTest struct {
	name   string
	source string
}

var smokeTests = []smokeTest{
	{"arithmetic", `main = def x do assert(1 + 2 == 3); assert(10 / 2 - 1 == 4); <- none; end;`},
	{"string-concat", `main = def x do assert('hello ' + 'world' == 'hello world'); <- none; end;`},
	{"recursion", `
fact = def n do if n == 1 then <- 1; else <- n * fact(n-1); end end;
main = def x do assert(fact(5) == 120); <- none; end;
`},
	{"while-loop", `
main = def x do
  y = 1; n = 4;
  while n > 1 do y = y * n; n = n - 1; end
  assert(y == 24);
  <- none;
end;
`},
	{"closures", `
counter = def start do
  n = start;
  <- def x do n = n + 1; <- n; end;
end;
main = def x do
  c = counter(0);
  assert(c(none) == 1);
  assert(c(none) == 2);
  <- none;
end;
`},
	{"lists", `main = def x do l = [1, 2, 3]; assert(head(l) == 1); assert(head(tail(l)) == 2); <- none; end;`},
	{"tuples", `main = def x do (a, b) = (1, 2); assert(a + b == 3); <- none; end;`},
	{"trycatch", `
b1 = def x do <- 1 / 0; end;
b2 = def err do <- -1; end;
main = def x do
  r = trycatch b1 b2;
  assert(r == -1);
  <- none;
end;
`},
}

func runTest(cmd *cobra.Command, _ []string) error {
	pass, fail := 0, 0
	for _, t := range smokeTests {
		sess, err := pipeline.New(".", ".")
		if err != nil {
			return err
		}
		_, runErr := sess.RunString(t.source, t.name)
		sess.Close()

		if runErr != nil {
			fail++
			color.New(color.FgRed).Printf("FAIL %s: %v\n", t.name, runErr)
			continue
		}
		pass++
		color.New(color.FgGreen).Printf("PASS %s\n", t.name)
	}
	fmt.Printf("%d passed, %d failed\n", pass, fail)
	if fail > 0 {
		os.Exit(1)
	}
	return nil
}
