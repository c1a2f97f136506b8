package main

import (
	"errors"
	"fmt"

	core "fugue.io/fugue-hpc/core"
)

type SCancelCommand struct {
	Help  bool `short:"h" long:"help" description:"Show this help message"`
	Force bool `short:"f" long:"force" description:"force job termination"`
	Args  struct {
		JobNumbers []string `positional-arg-name:"number" description:"job number"`
	} `positional-args:"true" required:"1"`
}

var sCancelCommand SCancelCommand

// Cancellation is an operation against the scheduler's job identifier; the
// scheduler owns the job lifecycle.
func (x *SCancelCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	cluster, err := core.GetClusterConfig()
	if err != nil {
		return errors.New("scancel: " + err.Error())
	}
	api := "shutdown"
	if x.Force {
		api = "terminate"
	}
	for _, number := range x.Args.JobNumbers {
		urlValues := cluster.GetUrlCreds()
		urlValues.Add("number", number)
		if _, err := core.ApiReq(cluster.Endpoint, api, urlValues); err != nil {
			return errors.New("scancel: unable to cancel job " + number)
		}
		fmt.Printf("scancel: canceled job %s\n", number)
	}
	return nil
}

func init() {
	parser.AddCommand("scancel",
		"Slurm scancel",
		"Signal jobs that are under the control of the cluster scheduler",
		&sCancelCommand)
}
