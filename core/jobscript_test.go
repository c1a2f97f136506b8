package core

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.sh")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestParseJobScript(t *testing.T) {
	script, err := ParseJobScript("SBATCH", "testdata/multirc_manual.sh")
	require.NoError(t, err)

	assert.Equal(t, "/bin/bash", script.Shell)
	assert.Equal(t, []string{
		"--job-name=multirc_manual",
		"--output=results/multirc_manual.log",
		"--time=1000:00",
		"--partition=ava_s.p",
		"--nodelist=ava-s0",
		"--cpus-per-task=8",
		"--gres=gpu:8",
		"--mem=400GB",
	}, script.Args)
	assert.Equal(t,
		"python3.7 scripts/launch.py --logdir results/multirc jobs/fugue/yaml/multirc_manual.yaml",
		script.FirstCommand())
}

func TestParseJobScriptMissingFile(t *testing.T) {
	_, err := ParseJobScript("SBATCH", "testdata/no_such_script.sh")
	assert.Error(t, err)
}

func TestParseJobScriptEmpty(t *testing.T) {
	path := writeScript(t, "")
	_, err := ParseJobScript("SBATCH", path)
	assert.Error(t, err)
}

func TestParseJobScriptNoShebang(t *testing.T) {
	path := writeScript(t, "echo hello\n")
	script, err := ParseJobScript("SBATCH", path)
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", script.Shell)
	assert.Empty(t, script.Args)
	assert.Equal(t, "echo hello", script.FirstCommand())
}

func TestParseJobScriptDirectiveBlockIsPrefix(t *testing.T) {
	path := writeScript(t, "#!/bin/bash\n"+
		"#SBATCH --time=1000:00\n"+
		"echo started\n"+
		"#SBATCH --partition=ava_s.p\n")
	script, err := ParseJobScript("SBATCH", path)
	require.NoError(t, err)
	// directives after the first executable line are body text
	assert.Equal(t, []string{"--time=1000:00"}, script.Args)
	assert.Contains(t, string(script.Script), "#SBATCH --partition=ava_s.p")
}

func TestParseJobScriptCommentsInsideBlock(t *testing.T) {
	path := writeScript(t, "#!/bin/bash\n"+
		"# experiment submission\n"+
		"#SBATCH --job-name=multirc_manual\n"+
		"\n"+
		"#SBATCH --mem=400GB\n"+
		"pwd\n")
	script, err := ParseJobScript("SBATCH", path)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"--job-name=multirc_manual", "--mem=400GB"}, script.Args)
	assert.Equal(t, "pwd", script.FirstCommand())
}
