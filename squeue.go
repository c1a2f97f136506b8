package main

import (
	"encoding/json"
	"errors"
	"sort"
	"strconv"

	core "fugue.io/fugue-hpc/core"
)

type SQueueCommand struct {
	Help bool   `short:"h" long:"help" description:"Show this help message"`
	User string `short:"u" long:"user" description:"Request jobs for this user"`
	Args struct {
		JobNumber string `positional-arg-name:"number" description:"job number"`
	} `positional-args:"true"`
}

var sQueueCommand SQueueCommand

func queueState(status string) (state, reason string) {
	switch status {
	case "PROCESSING STARTING", "RUNNING":
		return "R", ""
	case "COMPLETED", "COMPLETED WITH ERROR", "TERMINATED", "CANCELED":
		return "CD", ""
	default:
		return "PD", "(Resources)"
	}
}

func (x *SQueueCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	cluster, err := core.GetClusterConfig()
	if err != nil {
		return errors.New("squeue: " + err.Error())
	}
	if len(x.User) > 0 && x.User != cluster.Creds.Username {
		return errors.New("squeue: user does not match configured credentials")
	}

	urlValues := cluster.GetUrlCreds()
	if len(x.Args.JobNumber) > 0 {
		urlValues.Add("number", x.Args.JobNumber)
	}
	resp, err := core.ApiReq(cluster.Endpoint, "jobs", urlValues)
	if err != nil {
		return errors.New("squeue: unable to query job status")
	}
	var jobs core.FugueJobs
	if err := json.Unmarshal(resp, &jobs); err != nil {
		return errors.New("squeue: cannot read response")
	}

	numbers := make([]int, 0, len(jobs))
	for number := range jobs {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	table := [][]string{
		{"JOBID", "PARTITION", "NAME", "USER", "ST", "TIME", "NODES", "NODELIST(REASON)"},
	}
	for _, number := range numbers {
		job := jobs[number]
		if len(job.Queue) == 0 {
			continue
		}
		state, reason := queueState(job.Status)
		if len(reason) == 0 {
			reason = job.Machine.Type
		}
		elapsed := job.ElapsedTime
		if len(elapsed) == 0 {
			elapsed = "0:00"
		}
		table = append(table, []string{
			strconv.Itoa(number),
			job.Queue,
			job.Label,
			job.User,
			state,
			elapsed,
			strconv.Itoa(job.Machine.Nodes),
			reason})
	}
	core.PrintTable(table, false)
	return nil
}

func init() {
	parser.AddCommand("squeue",
		"Slurm squeue",
		"View information about jobs located in the scheduling queue",
		&sQueueCommand)
}
