package core

import (
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessArgs(t *testing.T) {
	// invoked through a scheduler-name symlink
	args, err := PreprocessArgs([]string{"/usr/local/bin/sbatch", "job.sh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sbatch", "job.sh"}, args)

	// invoked through the tool name with a subcommand
	args, err = PreprocessArgs([]string{"fugue-hpc", "sbatch", "job.sh"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sbatch", "job.sh"}, args)

	_, err = PreprocessArgs(nil)
	assert.Error(t, err)
}

type submitFlags struct {
	Help      bool   `short:"h" long:"help"`
	Time      string `short:"t" long:"time"`
	Partition string `short:"p" long:"partition"`
	Mem       string `long:"mem"`
	Args      struct {
		JobScript []string `positional-arg-name:"jobscript"`
	} `positional-args:"true"`
}

func newScriptParser(scriptCmd *submitFlags) *flags.Parser {
	parser := flags.NewNamedParser(JobScriptArg,
		flags.PassDoubleDash|flags.IgnoreUnknown)
	parser.AddCommand(JobScriptArg, JobScriptArg, JobScriptArg, scriptCmd)
	return parser
}

// Command-line flags take precedence over job script directives.
func TestParseJobFlagsPrecedence(t *testing.T) {
	scriptCmd := &submitFlags{}
	parser := newScriptParser(scriptCmd)

	cmd := &submitFlags{Time: "10:00"}
	args := []string{JobScriptArg,
		"--time=1000:00", "--partition=ava_s.p", "--mem=400GB"}
	require.NoError(t, ParseJobFlags(cmd, parser, scriptCmd, args, false))

	assert.Equal(t, "10:00", cmd.Time)
	assert.Equal(t, "ava_s.p", cmd.Partition)
	assert.Equal(t, "400GB", cmd.Mem)
}

func TestParseJobFlagsOverride(t *testing.T) {
	scriptCmd := &submitFlags{}
	parser := newScriptParser(scriptCmd)

	cmd := &submitFlags{Time: "10:00"}
	args := []string{JobScriptArg, "--time=1000:00"}
	require.NoError(t, ParseJobFlags(cmd, parser, scriptCmd, args, true))

	assert.Equal(t, "1000:00", cmd.Time)
}

func TestParseJobFlagsMismatch(t *testing.T) {
	scriptCmd := &submitFlags{}
	parser := newScriptParser(scriptCmd)

	type other struct{ Time string }
	err := ParseJobFlags(&other{}, parser, scriptCmd,
		[]string{JobScriptArg}, false)
	assert.Error(t, err)
}

func TestExitCodeError(t *testing.T) {
	err := &ExitCodeError{Code: 7}
	assert.Equal(t, "exit status 7", err.Error())
}
