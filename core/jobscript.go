package core

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// Data for an HPC job script
/*
#!/bin/bash
#SBATCH --job-name=multirc_manual
#SBATCH --time=1000:00
python3.7 scripts/launch.py --logdir results/multirc jobs/fugue/yaml/multirc_manual.yaml
*/
type JobScript struct {
	Shell string `json:"hpc_shell"`
	// Args parsed from the directive block
	Args   []string `json:"hpc_args"`
	Script []byte   `json:"hpc_script"`
}

// ParseJobScript splits a job script into its shell, its leading directive
// block (`#<directive>` lines), and the script body. The directive block is
// a prefix: once the first executable line is seen, later directive lines
// are body text, matching scheduler behavior.
func ParseJobScript(directive, filename string) (JobScript, error) {
	file, err := os.Open(filename)
	if err != nil {
		return JobScript{}, err
	}
	defer file.Close()

	shell := "/bin/sh"
	var args []string
	var script []byte

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return JobScript{}, errors.New("empty job script")
	}
	first := scanner.Text()
	if strings.HasPrefix(first, "#!") {
		shell = first[2:]
	} else {
		script = append(script, first...)
		script = append(script, '\n')
	}

	prefix := "#" + directive
	body := len(script) > 0
	for scanner.Scan() {
		line := scanner.Text()
		if !body {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, prefix) {
				args = append(args, strings.Fields(trimmed[len(prefix):])...)
				continue
			}
			// blank and comment lines do not end the directive block
			if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") {
				continue
			}
			body = true
		}
		script = append(script, line...)
		script = append(script, '\n')
	}
	if err := scanner.Err(); err != nil {
		return JobScript{}, err
	}
	return JobScript{
		Shell:  shell,
		Args:   args,
		Script: script,
	}, nil
}

// FirstCommand returns the first non-empty line of the script body.
func (j JobScript) FirstCommand() string {
	for _, line := range strings.Split(string(j.Script), "\n") {
		if trimmed := strings.TrimSpace(line); len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}
