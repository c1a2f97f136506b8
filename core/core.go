package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"
)

// Name of the hidden parser command used to re-parse scheduler directives
// found inside a job script.
const JobScriptArg = "jobscript"

// CLI command names
const (
	SBatchName  = "sbatch"
	SRunName    = "srun"
	SQueueName  = "squeue"
	SCancelName = "scancel"
	SInfoName   = "sinfo"
	FugueName   = "fugue"
)

// Commands the binary answers to when installed under a scheduler name.
// The CLI is built once and symlinked as each of these.
var cliCommands = []string{
	SBatchName,
	SRunName,
	SQueueName,
	SCancelName,
	SInfoName,
	FugueName,
}

func CreateHelpErr() error {
	err := flags.Error{
		Type:    flags.ErrHelp,
		Message: "show help message",
	}
	return &err
}

// ExitCodeError carries a child process exit status to the top of the CLI so
// it can be surfaced as the program's own exit code.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return "exit status " + strconv.Itoa(e.Code)
}

// PreprocessArgs rewrites argv so the parser sees a subcommand regardless of
// how the tool was invoked: `sbatch job.sh` and `fugue-hpc sbatch job.sh`
// are equivalent.
func PreprocessArgs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("core: missing command arguments")
	}
	invoked := filepath.Base(args[0])
	for _, name := range cliCommands {
		if invoked == name {
			return append([]string{name}, args[1:]...), nil
		}
	}
	return args[1:], nil
}

// ParseJobFlags folds scheduler directives parsed from a job script into cmd.
// Options set on the command line win unless override is true. cmd and
// scriptCmd must point to structs of the same type; scriptCmd receives the
// directive values during parsing.
func ParseJobFlags(cmd interface{}, scriptParser *flags.Parser,
	scriptCmd interface{}, args []string, override bool) error {
	if _, err := scriptParser.ParseArgs(args); err != nil {
		return err
	}
	return mergeJobFlags(cmd, scriptCmd, override)
}

func mergeJobFlags(dst, src interface{}, override bool) error {
	dstVal := reflect.ValueOf(dst)
	srcVal := reflect.ValueOf(src)
	if dstVal.Kind() != reflect.Ptr || srcVal.Kind() != reflect.Ptr {
		return errors.New("core: job flag merge requires pointers")
	}
	dstVal = dstVal.Elem()
	srcVal = srcVal.Elem()
	if dstVal.Type() != srcVal.Type() {
		return errors.New("core: job flag merge requires matching commands")
	}
	for i := 0; i < dstVal.NumField(); i++ {
		field := dstVal.Type().Field(i)
		// positional arguments and help belong to the command line only
		if field.Name == "Args" || field.Name == "Help" {
			continue
		}
		if !dstVal.Field(i).CanSet() {
			continue
		}
		if srcVal.Field(i).IsZero() {
			continue
		}
		if !dstVal.Field(i).IsZero() && !override {
			continue
		}
		dstVal.Field(i).Set(srcVal.Field(i))
	}
	return nil
}

// PrintTable writes rows in the aligned column layout the scheduler CLIs
// print. The first row is treated as a header when header is set.
func PrintTable(table [][]string, header bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for i, row := range table {
		if i == 0 && header {
			fmt.Fprintln(w, strings.ToUpper(strings.Join(row, "\t")))
			continue
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
