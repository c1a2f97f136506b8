package main

import (
	"errors"
	"fmt"

	core "fugue.io/fugue-hpc/core"
)

type FugueConfigFlags struct {
	Help    bool   `short:"h" long:"help" description:"Show this help message"`
	Cluster string `short:"c" long:"cluster" description:"cluster name" default:"default"`
}

type FugueCommand struct {
	Config  FugueConfigFlags    `group:"Configuration Options"`
	Login   FugueLoginCommand   `command:"login"`
	Cluster FugueClusterCommand `command:"cluster"`
}

type FugueLoginCommand struct {
	Config   FugueConfigFlags `group:"Configuration Options" hidden:"true"`
	Username string           `short:"u" long:"username" description:"scheduler API username"`
	Apikey   string           `short:"k" long:"apikey" description:"scheduler API apikey"`
	Args     struct {
		Endpoint string `positional-arg-name:"endpoint" description:"scheduler API endpoint"`
	} `positional-args:"true" required:"1"`
}

type FugueClusterCommand struct {
	Config FugueConfigFlags `group:"Configuration Options" hidden:"true"`
	List   bool             `short:"l" long:"list" description:"list available cluster configurations"`
}

var fugueCommand FugueCommand

func (x *FugueCommand) Execute(args []string) error {
	if x.Config.Help {
		return core.CreateHelpErr()
	}
	return nil
}

func (x *FugueLoginCommand) Execute(args []string) error {
	if x.Config.Help {
		return core.CreateHelpErr()
	}
	return core.HpcLogin(x.Args.Endpoint, x.Username, x.Apikey,
		x.Config.Cluster)
}

func (x *FugueClusterCommand) Execute(args []string) error {
	if x.Config.Help {
		return core.CreateHelpErr()
	}
	config, _ := core.ReadFugueConfig()
	if x.List {
		for key := range config {
			fmt.Println(key)
		}
		return nil
	}
	if _, ok := config[x.Config.Cluster]; ok {
		return core.WriteFugueConfigTarget(x.Config.Cluster)
	}
	return errors.New(x.Config.Cluster + " configuration does not exist")
}

func init() {
	parser.AddCommand("fugue",
		"fugue-hpc configuration",
		"The fugue command creates the configuration file to use with the cluster scheduler API",
		&fugueCommand)
}
