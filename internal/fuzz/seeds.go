package fuzztests

import "testing"

// maxFuzzInput bounds inputs so a single case stays fast.
const maxFuzzInput = 64 << 10

var coffeeSeeds = []string{
	"",
	"\n",
	"x = 1\n",
	"square = (x) -> x * x\n",
	"x = (\n",
	"s = 'open\n",
	"a = [1, {b: 2}]\n",
	"###\nblock\n",
	"# comment (\nx = 1\n",
	"f = (a,\n  b) ->\n  a + b\n",
	"x = 1)\n",
	"line1\r\nline2 = (\r\n",
	"é = \"ü\n",
	"\tindented = 'tab\n",
}

func addSeeds(f *testing.F) {
	for _, s := range coffeeSeeds {
		f.Add([]byte(s))
	}
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
