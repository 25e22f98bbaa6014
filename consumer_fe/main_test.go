package main

import (
	"net/http"
	"testing"

	"github.com/kataras/iris/v12/httptest"

	"github.com/xor-shift/pibench/common"
)

func TestEndpoints(t *testing.T) {
	last := &lastResult{}
	metrics := common.NewMetrics()
	e := httptest.New(t, newApp(last, metrics))

	e.GET("/test").Expect().Status(http.StatusOK).Body().Equal("OK")
	e.GET("/data").Expect().Status(http.StatusNoContent)

	packet := common.AMQPPacket{
		RunID: "run-1",
		Result: common.Result{
			Language:   "Go",
			Mode:       common.ModeSingle,
			Iterations: 100000,
			PiEstimate: 3.13604,
		},
	}
	last.set(packet)
	metrics.Observe(packet)

	data := e.GET("/data").Expect().Status(http.StatusOK).JSON().Object()
	data.Value("runId").Equal("run-1")
	data.Value("result").Object().Value("pi_estimate").Equal(3.13604)

	e.GET("/metrics").Expect().Status(http.StatusOK).
		Body().Contains(`pibench_results_received_total{language="Go",mode="single"} 1`)
}
