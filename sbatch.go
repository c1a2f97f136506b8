package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"

	core "fugue.io/fugue-hpc/core"
	logger "fugue.io/fugue-hpc/logger"
)

type SBatchCommand struct {
	Help        bool   `short:"h" long:"help" description:"Show this help message"`
	Chdir       string `short:"D" long:"chdir" description:"Set the working directory of the batch script before it is executed"`
	Jobname     string `short:"J" long:"job-name" description:"Specify a name for the job allocation"`
	Output      string `short:"o" long:"output" description:"File for the batch script's standard output and error"`
	Nodes       int    `short:"N" long:"nodes" description:"Number of nodes allocated to this job"`
	Time        string `short:"t" long:"time" description:"Wall clock time limit hours:minutes[:seconds]"`
	Partition   string `short:"p" long:"partition" description:"Request a specific partition for the resource allocation"`
	Account     string `short:"A" long:"account" description:"Charge resources used by this job to specified account"`
	Nodelist    string `short:"w" long:"nodelist" description:"Request a specific list of hosts"`
	CpusPerTask int    `short:"c" long:"cpus-per-task" description:"Number of processors per task"`
	Gpus        string `short:"G" long:"gpus" description:"Specify the total number of GPUs required for the job"`
	Gres        string `long:"gres" description:"Comma delimited list of generic consumable resources, \"name[[:type]:count]\""`
	Mem         string `long:"mem" description:"Real memory required per node. Different units can be specified using the suffix [K|M|G|T]"`
	Args        struct {
		JobScript []string `positional-arg-name:"jobscript" description:"job script"`
	} `positional-args:"true"`
}

var sBatchCommand SBatchCommand
var sBatchScriptParser = flags.NewNamedParser(core.JobScriptArg,
	flags.PassDoubleDash|flags.IgnoreUnknown)

var sBatchScriptCommand SBatchCommand

// parseGresResources splits a --gres list into name -> request pairs,
// e.g. "gpu:8,mic:1" -> {"gpu": "8", "mic": "1"}.
func parseGresResources(gres string) map[string]string {
	res := map[string]string{}
	if len(gres) == 0 {
		return res
	}
	for _, resource := range strings.Split(gres, ",") {
		split := strings.SplitN(resource, ":", 2)
		if len(split) == 1 {
			res[split[0]] = "1"
		} else {
			res[split[0]] = split[1]
		}
	}
	return res
}

func (x *SBatchCommand) Execute(args []string) error {
	// leave early if parsing jobscript arguments
	if sBatchScriptParser.Active != nil &&
		sBatchScriptParser.Active.Name == core.JobScriptArg {
		return nil
	}

	if x.Help {
		return core.CreateHelpErr()
	}

	// jobscript required
	// sbatch [OPTIONS...] script
	if len(x.Args.JobScript) == 0 {
		return errors.New("sbatch: missing job script")
	}
	jobScriptFilename := x.Args.JobScript[0]

	jobScript, jerr := core.ParseJobScript("SBATCH", jobScriptFilename)
	if jerr != nil {
		return errors.New("sbatch: unable to parse job script: " + jerr.Error())
	}
	// parse flags from jobscript (CLI flags take precedence; override == false)
	if core.ParseJobFlags(x, sBatchScriptParser, &sBatchScriptCommand,
		append([]string{core.JobScriptArg}, jobScript.Args...),
		false) != nil {
		// Best effort
		fmt.Println("WARNING: unable to parse flags in jobscript")
	}
	jobScriptFilename = filepath.Base(jobScriptFilename)
	logger.DebugObj("jobScript", jobScript)

	spec, err := buildJobSpec(x, jobScriptFilename)
	if err != nil {
		return errors.New("sbatch: " + err.Error())
	}

	// Read CLI config for selected cluster
	cluster, err := core.GetClusterConfig()
	if err != nil {
		return errors.New("sbatch: " + err.Error())
	}

	queues, err := core.GetQueues(cluster, spec.Queue)
	if err != nil {
		return errors.New("sbatch: cannot find partition: " + spec.Queue +
			"  " + err.Error())
	}
	if len(queues) == 0 {
		return errors.New("sbatch: cannot find partition: " + spec.Queue)
	}
	var myQueue core.FugueQueue
	for _, queue := range queues {
		myQueue = queue
		break
	}
	// check if scale request is larger than partition size
	if spec.Nodes > myQueue.MachineScale {
		return errors.New("sbatch: --nodes request larger than partition size (" +
			strconv.Itoa(myQueue.MachineScale) + ")")
	}

	myReq := core.NewJobRequest(spec, jobScript, cluster, myQueue,
		submitEnvs(spec, cluster))
	logger.DebugObj("jobRequest", myReq)

	// Submit job request to the scheduler API
	myJobResponse, err := core.SubmitJob(cluster.Endpoint, myReq)
	if err != nil {
		return errors.New("sbatch: " + err.Error())
	}
	fmt.Printf("Submitted batch job %d\n", myJobResponse.Number)

	return nil
}

// buildJobSpec flattens the merged command flags into the resource request.
// The same flags and script always produce the same spec.
func buildJobSpec(x *SBatchCommand, jobScriptFilename string) (core.JobSpec, error) {
	spec := core.JobSpec{
		JobName:    x.Jobname,
		OutputFile: x.Output,
		Walltime:   x.Time,
		Queue:      x.Partition,
		NodeList:   x.Nodelist,
		Nodes:      x.Nodes,
		Cpus:       x.CpusPerTask,
		Account:    x.Account,
		Workdir:    x.Chdir,
	}
	if len(spec.JobName) == 0 {
		spec.JobName = jobScriptFilename
	}
	if len(spec.Queue) == 0 {
		spec.Queue = "default"
	}
	if spec.Nodes < 1 {
		spec.Nodes = 1
	}
	if len(x.Mem) > 0 {
		mem, err := core.DecodeMemReq(x.Mem)
		if err != nil {
			return core.JobSpec{}, err
		}
		spec.MemGB = mem
	}
	gpuReq := x.Gpus
	if len(gpuReq) == 0 {
		gpuReq = parseGresResources(x.Gres)["gpu"]
	}
	if len(gpuReq) > 0 {
		gpus, err := core.DecodeGpusReq(gpuReq)
		if err != nil {
			return core.JobSpec{}, err
		}
		spec.Gpus = gpus
	}
	return spec, nil
}

// submitEnvs sets the scheduler output environment variables forwarded to
// the remote job.
func submitEnvs(spec core.JobSpec, cluster core.FugueCluster) map[string]string {
	envs := make(map[string]string)
	envs["SLURM_CLUSTER_NAME"] = core.ReadFugueConfigTarget()
	if len(spec.Account) > 0 {
		envs["SLURM_JOB_ACCOUNT"] = spec.Account
	} else {
		envs["SLURM_JOB_ACCOUNT"] = cluster.Creds.Username
	}
	envs["SLURM_JOB_PARTITION"] = spec.Queue
	envs["SLURM_JOB_NAME"] = spec.JobName
	if len(spec.Workdir) > 0 {
		envs["SLURM_SUBMIT_DIR"] = spec.Workdir
	} else if submitDir, err := os.Getwd(); err != nil {
		logger.WarningPrintf("sbatch: setting SLURM_SUBMIT_DIR to ${HOME}")
		envs["SLURM_SUBMIT_DIR"] = "${HOME}"
	} else {
		envs["SLURM_SUBMIT_DIR"] = submitDir
	}
	if submitHost, err := os.Hostname(); err != nil {
		logger.WarningPrintf("sbatch: setting SLURM_SUBMIT_HOST to localhost")
		envs["SLURM_SUBMIT_HOST"] = "localhost"
	} else {
		envs["SLURM_SUBMIT_HOST"] = submitHost
	}
	return envs
}

func init() {
	parser.AddCommand("sbatch",
		"Slurm sbatch",
		"Submit a batch script to the cluster scheduler",
		&sBatchCommand)
	// parser for jobscript flags
	sBatchScriptParser.AddCommand(core.JobScriptArg,
		core.JobScriptArg,
		core.JobScriptArg,
		&sBatchScriptCommand)
}
