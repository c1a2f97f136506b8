package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/url"
)

// Submission format for the cluster scheduler API
type FugueJobRequest struct {
	Queue    string       `json:"queue"`
	JobLabel string       `json:"job_label,omitempty"`
	User     FugueCreds   `json:"user"`
	Hpc      HpcReq       `json:"hpc"`
	Machine  FugueMachine `json:"machine"`
}

// HpcReq carries the declarative resource request and the encoded job
// script. Resource keys follow the scheduler's machine catalog (mc_cores,
// mc_gpus, mc_ram, mc_name).
type HpcReq struct {
	JobShell   string            `json:"job_shell"`
	JobScript  string            `json:"job_script"`
	Walltime   string            `json:"walltime,omitempty"`
	OutputFile string            `json:"output_file,omitempty"`
	Umask      int               `json:"umask"`
	Envs       map[string]string `json:"envs"`
	Resources  map[string]string `json:"resources"`
}

type FugueMachine struct {
	Type  string `json:"type"`
	Nodes int    `json:"nodes"`
}

// Return from API (fugue/submit)
type FugueJobResponse struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
}

type FugueQueue struct {
	Name           string `json:"hpc_queue_name"`
	DefaultMachine string `json:"hpc_queue_default_machine"`
	MachineScale   int    `json:"hpc_queue_default_machine_scale"`
}

type FugueQueues map[string]FugueQueue

// Job entry returned by fugue/jobs
type FugueJob struct {
	Label         string       `json:"job_label"`
	User          string       `json:"job_user"`
	Status        string       `json:"job_status"`
	Queue         string       `json:"job_queue"`
	Machine       FugueMachine `json:"job_machine"`
	ElapsedTime   string       `json:"job_elapsed_time"`
	SubmitTime    string       `json:"job_submit_time"`
	ExitCode      int          `json:"job_exit_code"`
	OutputFile    string       `json:"job_output_file"`
	WallTimeLimit string       `json:"job_walltime"`
}

type FugueJobs map[int]FugueJob

// ApiReq performs a GET request against the scheduler API and returns the
// raw response body. Failures are the scheduler's to explain; no retries.
func ApiReq(endpoint, api string, values url.Values) ([]byte, error) {
	resp, err := http.Get(endpoint + "/fugue/" + api + "?" + values.Encode())
	if err != nil {
		return nil, errors.New("core: API request failed: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("core: API request failed: " +
			http.StatusText(resp.StatusCode))
	}
	return ioutil.ReadAll(resp.Body)
}

// SubmitJob posts a job request to the scheduler API. The same request
// yields a new job number on every call; submission is not deduplicated.
func SubmitJob(endpoint string, jobReq FugueJobRequest) (FugueJobResponse, error) {
	submitErrMsg := "core: submit failed: "
	jsonBytes, err := json.Marshal(jobReq)
	if err != nil {
		return FugueJobResponse{}, errors.New(submitErrMsg + "marshal JSON")
	}

	req, err := http.NewRequest("POST", endpoint+"/fugue/submit",
		bytes.NewBuffer(jsonBytes))
	if err != nil {
		return FugueJobResponse{}, errors.New(submitErrMsg + "http request")
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return FugueJobResponse{}, errors.New(submitErrMsg + "http client")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FugueJobResponse{}, errors.New(submitErrMsg +
			http.StatusText(resp.StatusCode))
	}

	var jobResponse FugueJobResponse
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return FugueJobResponse{}, errors.New(submitErrMsg + "read response")
	}
	if err := json.Unmarshal(body, &jobResponse); err != nil {
		return FugueJobResponse{}, errors.New(submitErrMsg + "decode response")
	}

	return jobResponse, nil
}

// GetQueues looks up queues visible to the configured credentials. An empty
// name requests every queue.
func GetQueues(cluster FugueCluster, name string) (FugueQueues, error) {
	values := cluster.GetUrlCreds()
	values.Add("info", "true")
	if len(name) > 0 {
		values.Add("name", name)
	}
	resp, err := ApiReq(cluster.Endpoint, "queues", values)
	if err != nil {
		return nil, err
	}
	queues := make(FugueQueues)
	if err := json.Unmarshal(resp, &queues); err != nil {
		return nil, errors.New("core: cannot read queues response")
	}
	return queues, nil
}

// HpcLogin validates the endpoint and credentials before persisting them.
func HpcLogin(endpoint, username, apikey, cluster string) error {
	config, _ := ReadFugueConfig()
	if config == nil {
		config = make(FugueConfig)
	}
	config[cluster] = FugueCluster{
		Endpoint: endpoint,
		Creds: FugueCreds{
			Username: username,
			Apikey:   apikey,
		},
	}
	if !testFugueEndpoint(cluster, config) {
		return errors.New("fugue: scheduler endpoint not live")
	}
	if !testFugueCreds(cluster, config) {
		return errors.New("fugue: unable to validate credentials")
	}
	return WriteFugueConfig(config)
}

func testFugueCreds(cluster string, config FugueConfig) bool {
	// hit an API endpoint that requires authorization
	_, err := ApiReq(config[cluster].Endpoint, "machines",
		config[cluster].GetUrlCreds())
	return err == nil
}

func testFugueEndpoint(cluster string, config FugueConfig) bool {
	resp, err := http.Get(config[cluster].Endpoint + "/fugue/live")
	if err != nil || resp.StatusCode != http.StatusOK {
		return false
	}
	return true
}
