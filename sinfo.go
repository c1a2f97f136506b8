package main

import (
	"errors"
	"strconv"

	core "fugue.io/fugue-hpc/core"
)

type SInfoCommand struct {
	Help      bool   `short:"h" long:"help" description:"Show this help message"`
	Partition string `short:"p" long:"partition" description:"Report information only about the specified partition"`
}

var sInfoCommand SInfoCommand

func printPartitionInfo(queues core.FugueQueues) {
	table := [][]string{
		{"PARTITION", "AVAIL", "TIMELIMIT", "NODES", "STATE", "NODELIST"},
	}
	for _, queue := range queues {
		scaleString := strconv.Itoa(queue.MachineScale)
		table = append(table, []string{
			queue.Name,
			"up",
			"infinite",
			scaleString,
			"idle",
			queue.DefaultMachine + "[0-" + strconv.Itoa(queue.MachineScale-1) + "]"})
	}
	core.PrintTable(table, false)
}

func (x *SInfoCommand) Execute(args []string) error {
	if x.Help {
		return core.CreateHelpErr()
	}
	cluster, err := core.GetClusterConfig()
	if err != nil {
		return errors.New("sinfo: " + err.Error())
	}
	queues, err := core.GetQueues(cluster, x.Partition)
	if err != nil {
		return errors.New("sinfo: " + err.Error())
	}
	printPartitionInfo(queues)
	return nil
}

func init() {
	parser.AddCommand("sinfo",
		"Slurm sinfo",
		"View information about cluster nodes and partitions",
		&sInfoCommand)
}
