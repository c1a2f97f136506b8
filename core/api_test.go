package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitJob(t *testing.T) {
	var got FugueJobRequest
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fugue/submit", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(FugueJobResponse{
				Name:   "multirc_manual",
				Number: 42,
			})
		}))
	defer server.Close()

	req := FugueJobRequest{
		Queue:    "ava_s.p",
		JobLabel: "multirc_manual",
		Machine:  FugueMachine{Type: "ava-s", Nodes: 1},
		Hpc: HpcReq{
			Walltime: "1000:00",
			Resources: map[string]string{
				"mc_cores": "8",
				"mc_gpus":  "8",
				"mc_ram":   "400",
			},
		},
	}
	resp, err := SubmitJob(server.URL, req)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.Number)
	assert.Equal(t, "multirc_manual", resp.Name)
	assert.Equal(t, req.Queue, got.Queue)
	assert.Equal(t, req.Hpc.Resources, got.Hpc.Resources)
}

func TestSubmitJobRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such queue", http.StatusNotFound)
		}))
	defer server.Close()

	_, err := SubmitJob(server.URL, FugueJobRequest{Queue: "ava_s.p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), http.StatusText(http.StatusNotFound))
}

func TestApiReq(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fugue/terminate", r.URL.Path)
			require.Equal(t, "42", r.URL.Query().Get("number"))
			w.Write([]byte("ok"))
		}))
	defer server.Close()

	values := url.Values{}
	values.Set("number", "42")
	body, err := ApiReq(server.URL, "terminate", values)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestApiReqError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "denied", http.StatusUnauthorized)
		}))
	defer server.Close()

	_, err := ApiReq(server.URL, "jobs", url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), http.StatusText(http.StatusUnauthorized))
}

func TestGetQueues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/fugue/queues", r.URL.Path)
			require.Equal(t, "true", r.URL.Query().Get("info"))
			require.Equal(t, "ava_s.p", r.URL.Query().Get("name"))
			json.NewEncoder(w).Encode(FugueQueues{
				"ava_s.p": {
					Name:           "ava_s.p",
					DefaultMachine: "ava-s",
					MachineScale:   4,
				},
			})
		}))
	defer server.Close()

	cluster := FugueCluster{
		Endpoint: server.URL,
		Creds:    FugueCreds{Username: "researcher", Apikey: "secret"},
	}
	queues, err := GetQueues(cluster, "ava_s.p")
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, "ava-s", queues["ava_s.p"].DefaultMachine)
	assert.Equal(t, 4, queues["ava_s.p"].MachineScale)
}
