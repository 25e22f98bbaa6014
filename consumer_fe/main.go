package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"

	"github.com/xor-shift/pibench/common"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading dotenv failed: %s", err)
	}
}

// lastResult is written by the amqp goroutine and read by http handlers.
type lastResult struct {
	mu     sync.RWMutex
	packet *common.AMQPPacket
}

func (l *lastResult) set(packet common.AMQPPacket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.packet = &packet
}

func (l *lastResult) get() (common.AMQPPacket, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.packet == nil {
		return common.AMQPPacket{}, false
	}

	return *l.packet, true
}

func newApp(last *lastResult, metrics *common.Metrics) *iris.Application {
	app := iris.New()

	app.Get("/test", func(ctx iris.Context) {
		_, _ = ctx.Text("OK")
	})

	app.Get("/data", func(ctx iris.Context) {
		packet, ok := last.get()
		if !ok {
			ctx.StatusCode(http.StatusNoContent)
			return
		}

		jsonData, err := json.Marshal(packet)
		if err != nil {
			app.Logger().Errorf("/data error (marshal): %s", err)
			ctx.StatusCode(http.StatusInternalServerError)
			_, _ = ctx.Text("internal error: %s", err)
			return
		}

		ctx.ContentType("application/json")
		_, _ = ctx.Write(jsonData)
	})

	app.Get("/metrics", iris.FromStd(metrics.Handler()))

	return app
}

func main() {
	var err error

	var consumer *common.AMQPConsumer

	last := &lastResult{}
	metrics := common.NewMetrics()

	if consumer, err = common.NewAMQPConsumer(
		os.Getenv("AMQP_URL"),
		"pi_results_queue_fe",
		"pi_results_consumer_fe",
		func(packet common.AMQPPacket) error {
			log.Printf("run %s: %s/%s pi = %f (error %g) in %.2fms",
				packet.RunID,
				packet.Result.Language,
				packet.Result.Mode,
				packet.Result.PiEstimate,
				packet.Result.Error,
				packet.Result.TimeMS)

			last.set(packet)
			metrics.Observe(packet)

			return nil
		}); err != nil {
		log.Fatalln(err)
	}

	if err = consumer.Start(); err != nil {
		log.Fatalln(err)
	}

	app := newApp(last, metrics)

	if err = app.Listen(fmt.Sprintf(":%s", os.Getenv("CONSUMER_FE_PORT"))); err != nil {
		log.Fatalln(err)
	}
}
