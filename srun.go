package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	core "fugue.io/fugue-hpc/core"
	logger "fugue.io/fugue-hpc/logger"
)

type SRunCommand struct {
	Help    bool   `short:"h" long:"help" description:"Show this help message"`
	Chdir   string `short:"D" long:"chdir" description:"Set the working directory before the job script is executed"`
	Jobname string `short:"J" long:"job-name" description:"Specify a name for the job"`
	Output  string `short:"o" long:"output" description:"File for the job's standard output and error"`
	Args    struct {
		JobScript []string `positional-arg-name:"jobscript" description:"job script"`
	} `positional-args:"true"`
}

var sRunCommand SRunCommand
var sRunScriptParser = flags.NewNamedParser(core.JobScriptArg,
	flags.PassDoubleDash|flags.IgnoreUnknown)

var sRunScriptCommand SRunCommand

// srun is the blocking local path: the job script body runs synchronously,
// output goes to the declared log file, and the child's exit status becomes
// the program's own. No retries, no recovery.
func (x *SRunCommand) Execute(args []string) error {
	// leave early if parsing jobscript arguments
	if sRunScriptParser.Active != nil &&
		sRunScriptParser.Active.Name == core.JobScriptArg {
		return nil
	}

	if x.Help {
		return core.CreateHelpErr()
	}

	if len(x.Args.JobScript) == 0 {
		return errors.New("srun: missing job script")
	}
	jobScriptFilename := x.Args.JobScript[0]

	jobScript, jerr := core.ParseJobScript("SBATCH", jobScriptFilename)
	if jerr != nil {
		return errors.New("srun: unable to parse job script: " + jerr.Error())
	}
	// parse flags from jobscript (CLI flags take precedence; override == false)
	if core.ParseJobFlags(x, sRunScriptParser, &sRunScriptCommand,
		append([]string{core.JobScriptArg}, jobScript.Args...),
		false) != nil {
		fmt.Println("WARNING: unable to parse flags in jobscript")
	}

	command := jobScript.FirstCommand()
	if len(command) == 0 {
		return errors.New("srun: empty job script")
	}

	if len(x.Chdir) > 0 {
		if err := os.Chdir(x.Chdir); err != nil {
			return errors.New("srun: " + err.Error())
		}
	}
	setJobEnvs(x.Jobname, filepath.Base(jobScriptFilename))

	if launch, ok := core.ParseLaunchCommand(command); ok {
		return runLaunch(launch, x.Output, x.Jobname)
	}
	return runShell(jobScript, x.Output)
}

// runLaunch performs the single launcher invocation a submission script
// declares: interpreter, launcher script, --logdir, configuration path.
func runLaunch(launch core.LaunchSpec, outputFile, jobName string) error {
	// the launcher YAML supplies job defaults when directives are silent
	if config, err := core.ReadLaunchConfig(launch.Config); err == nil {
		if len(jobName) == 0 && len(config.Name) > 0 {
			os.Setenv("SLURM_JOB_NAME", config.Name)
		}
		for k, v := range config.Env {
			os.Setenv(k, v)
		}
		logger.DebugObj("launchConfig", config)
	}

	logger.InfoObj("launch", launch)
	result, err := launch.Run(context.Background(), outputFile)
	logger.InfoPrintf("srun: submission %s finished in %s with exit code %d",
		result.SubmissionID, result.Duration, result.ExitCode)
	if err != nil {
		logger.ErrorPrintf("srun: %v", err)
		return &core.ExitCodeError{Code: result.ExitCode}
	}
	return nil
}

// runShell executes the full script body under the shell declared by the
// shebang line.
func runShell(jobScript core.JobScript, outputFile string) error {
	cmd := exec.Command(jobScript.Shell, "-c", string(jobScript.Script))
	var out io.Writer = os.Stdout
	var errOut io.Writer = os.Stderr
	if len(outputFile) > 0 {
		f, err := os.OpenFile(outputFile,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return errors.New("srun: " + err.Error())
		}
		defer f.Close()
		out = f
		errOut = f
	}
	cmd.Stdout = out
	cmd.Stderr = errOut
	if err := cmd.Run(); err != nil {
		logger.ErrorPrintf("srun: %v", err)
		code := 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &core.ExitCodeError{Code: code}
	}
	return nil
}

func setJobEnvs(jobName, jobScriptFilename string) {
	if len(jobName) == 0 {
		jobName = jobScriptFilename
	}
	os.Setenv("SLURM_JOB_NAME", jobName)
	if submitDir, err := os.Getwd(); err == nil {
		os.Setenv("SLURM_SUBMIT_DIR", submitDir)
	}
	if submitHost, err := os.Hostname(); err == nil {
		os.Setenv("SLURM_SUBMIT_HOST", submitHost)
	}
}

func init() {
	parser.AddCommand("srun",
		"Slurm srun",
		"Run a job script locally under the declared resource request",
		&sRunCommand)
	// parser for jobscript flags
	sRunScriptParser.AddCommand(core.JobScriptArg,
		core.JobScriptArg,
		core.JobScriptArg,
		&sRunScriptCommand)
}
