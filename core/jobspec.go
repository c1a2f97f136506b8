package core

import (
	"encoding/base64"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// JobSpec is the flat resource request assembled from script directives and
// command-line flags. It is consumed once at submission time.
type JobSpec struct {
	JobName    string
	OutputFile string
	Walltime   string
	Queue      string
	NodeList   string
	Nodes      int
	Cpus       int
	Gpus       int
	MemGB      int
	Account    string
	Workdir    string
}

// DecodeMemReq converts a memory request with an optional K/M/G/T suffix
// into whole gigabytes (rounded up). Bare numbers are megabytes.
func DecodeMemReq(req string) (mem int, err error) {
	re := regexp.MustCompile("^[0-9]+")
	te := regexp.MustCompile("[KMGT]")
	if match := re.FindString(req); len(match) > 0 {
		if base, perr := strconv.ParseInt(match, 10, 64); perr == nil {
			if mag := te.FindString(req[len(match):]); len(mag) > 0 {
				switch mag {
				case "K":
					mem = int(base) * 1024
				case "M":
					mem = int(base) * 1024 * 1024
				case "G":
					mem = int(base) * 1024 * 1024 * 1024
				case "T":
					mem = int(base) * 1024 * 1024 * 1024 * 1024
				}
			} else {
				mem = int(base) * 1024 * 1024
			}
			mem = int(math.Ceil(float64(mem) / float64(1024*1024*1024)))
			return
		}
	}
	err = errors.New("invalid mem request")
	return
}

// DecodeGpusReq parses a --gpus or gres-style GPU request: "8", "gpu:8",
// "gpu:volta:8". The trailing field is the count.
func DecodeGpusReq(req string) (gpus int, err error) {
	if len(req) == 0 {
		err = errors.New("empty gpu request")
		return
	}
	split := strings.Split(req, ":")
	count := split[len(split)-1]
	if i, perr := strconv.Atoi(count); perr == nil && i >= 0 {
		gpus = i
		return
	}
	err = errors.New("invalid gpu request: " + req)
	return
}

// NewJobRequest builds the wire request for a job spec and script. The same
// inputs always produce the same request; the scheduler still assigns each
// submission a fresh job number.
func NewJobRequest(spec JobSpec, script JobScript, cluster FugueCluster,
	queue FugueQueue, envs map[string]string) FugueJobRequest {
	nodes := spec.Nodes
	if nodes < 1 {
		nodes = 1
	}
	jobShell := script.Shell
	if len(spec.Workdir) > 0 {
		jobShell = "cd " + spec.Workdir + " && " + jobShell
	}
	resources := map[string]string{
		"mc_cores": strconv.Itoa(spec.Cpus),
		"mc_gpus":  strconv.Itoa(spec.Gpus),
		"mc_ram":   strconv.Itoa(spec.MemGB),
	}
	if len(spec.NodeList) > 0 {
		resources["mc_name"] = spec.NodeList
	}
	if envs == nil {
		envs = map[string]string{}
	}
	return FugueJobRequest{
		Queue:    queue.Name,
		JobLabel: spec.JobName,
		User:     cluster.Creds,
		Machine: FugueMachine{
			Type:  queue.DefaultMachine,
			Nodes: nodes,
		},
		Hpc: HpcReq{
			JobShell:   jobShell,
			JobScript:  base64.StdEncoding.EncodeToString(script.Script),
			Walltime:   spec.Walltime,
			OutputFile: spec.OutputFile,
			Umask:      0,
			Envs:       envs,
			Resources:  resources,
		},
	}
}
