package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/typesplit/pkg/config"
	"github.com/ajitpratap0/typesplit/pkg/errors"
	"github.com/ajitpratap0/typesplit/pkg/testutil"
)

type CLISuite struct {
	testutil.FileSuite
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) execute(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(s.Context())
	return out.String(), err
}

func (s *CLISuite) TestScenarioAFullStats() {
	input := s.CreateLinesFile("in.txt", "42", "-7", "3.14", "hello", "")
	out := s.Path("out")

	stdout, err := s.execute("-o", out, "-f", input)
	s.Require().NoError(err)

	s.Equal([]string{"42", "-7"}, s.ReadLines(filepath.Join(out, "integers.txt")))
	s.Equal([]string{"3.14"}, s.ReadLines(filepath.Join(out, "floats.txt")))
	s.Equal([]string{"hello", ""}, s.ReadLines(filepath.Join(out, "strings.txt")))
	s.Contains(stdout, "  min: -7\n")
	s.Contains(stdout, "  mean: 17.5\n")
}

func (s *CLISuite) TestFlagsInterleaveWithFiles() {
	a := s.CreateLinesFile("a.txt", "1", "x")
	b := s.CreateLinesFile("b.txt", "2")
	out := s.Path("out")

	stdout, err := s.execute(a, "-o", out, b, "-p", "res_", "-s")
	s.Require().NoError(err)

	s.Equal([]string{"1", "2"}, s.ReadLines(filepath.Join(out, "res_integers.txt")))
	s.Equal([]string{"x"}, s.ReadLines(filepath.Join(out, "res_strings.txt")))
	s.Contains(stdout, "  count: 2\n")
	s.NotContains(stdout, "min:")
}

func (s *CLISuite) TestFullStatsWinsOverShort() {
	input := s.CreateLinesFile("in.txt", "5")

	stdout, err := s.execute("-o", s.Path("out"), "-s", "-f", input)
	s.Require().NoError(err)
	s.Contains(stdout, "  sum: 5\n")
}

func (s *CLISuite) TestConfigFileWithFlagOverride() {
	input := s.CreateLinesFile("in.txt", "1.5", "word")
	out := s.Path("out")
	cfgPath := s.Path("typesplit.yaml")

	cfg := config.DefaultRunConfig()
	cfg.OutputDir = out
	cfg.Prefix = "cfg_"
	cfg.Stats = config.StatsShort
	cfg.StatsFormat = config.FormatJSON
	s.Require().NoError(config.Save(cfgPath, cfg))

	stdout, err := s.execute("--config", cfgPath, "-p", "flag_", input)
	s.Require().NoError(err)

	s.Equal([]string{"1.5"}, s.ReadLines(filepath.Join(out, "flag_floats.txt")))
	testutil.RequireNoFile(s.T(), filepath.Join(out, "cfg_floats.txt"))
	s.Contains(stdout, `"floats": {`)
}

func (s *CLISuite) TestDropNoticeGoesToStdout() {
	input := s.CreateLinesFile("in.txt", "99999999999999999999", "1")

	stdout, err := s.execute("-o", s.Path("out"), input)
	s.Require().NoError(err)
	s.Contains(stdout, "99999999999999999999")
}

func (s *CLISuite) TestMissingInputIsNotFatal() {
	_, err := s.execute("-o", s.Path("out"), s.Path("missing.txt"))
	s.NoError(err)
}

func (s *CLISuite) TestMetricsFile() {
	input := s.CreateLinesFile("in.txt", "1", "2")
	metricsPath := s.Path("typesplit.prom")

	_, err := s.execute("-o", s.Path("out"), "--metrics-file", metricsPath, input)
	s.Require().NoError(err)

	data, err := os.ReadFile(metricsPath)
	s.Require().NoError(err)
	s.True(strings.Contains(string(data), `typesplit_lines_classified_total{kind="integers"} 2`))
}

func (s *CLISuite) TestInvalidFlagValues() {
	input := s.CreateLinesFile("in.txt", "1")

	_, err := s.execute("--merge-policy", "sideways", input)
	s.Require().Error(err)
	s.True(errors.IsType(err, errors.ErrorTypeConfig))

	_, err = s.execute("--compress", "rar", input)
	s.Error(err)

	_, err = s.execute("--no-such-flag", input)
	s.Error(err)
}

func (s *CLISuite) TestVersion() {
	stdout, err := s.execute("version")
	s.Require().NoError(err)
	s.True(strings.HasPrefix(stdout, "typesplit v"+version+"\n"))
}

func (s *CLISuite) TestProfileFlag() {
	input := s.CreateLinesFile("in.txt", "1")
	dir := s.Path("prof")

	_, err := s.execute("-o", s.Path("out"), "--profile", "memory,goroutine", "--profile-dir", dir, input)
	s.Require().NoError(err)

	entries, err := os.ReadDir(dir)
	s.Require().NoError(err)
	s.Len(entries, 2)

	_, err = s.execute("--profile", "disk", input)
	s.Error(err)
}

func (s *CLISuite) TestHelpDescribesStatsFlags() {
	stdout, err := s.execute("--help")
	s.Require().NoError(err)
	s.Contains(stdout, "Print per-partition counts")
	s.Contains(stdout, "Print counts and aggregates (wins over -s)")
}
