package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/template"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/xor-shift/pibench/common"
	"github.com/xor-shift/pibench/montecarlo"
	"github.com/xor-shift/pibench/util/rng"
)

type Args struct {
	Mode       string        `name:"mode" short:"m" enum:"single,parallel" default:"single" help:"Run on one goroutine or on a worker pool"`
	Iterations uint64        `name:"iterations" short:"n" default:"100000000" help:"Number of points to sample"`
	Workers    int           `name:"workers" short:"w" default:"0" help:"Worker count for parallel mode, 0 for one per CPU"`
	Seed       uint64        `name:"seed" short:"s" default:"12345" help:"Base seed"`
	Partition  string        `name:"partition" short:"p" enum:"seed,jump" default:"seed" help:"How parallel workers get independent streams"`
	Timeout    time.Duration `name:"timeout" default:"0s" help:"Abort the run after this long, 0 to disable"`
	Out        string        `name:"out" short:"o" help:"Also write the result to this file (templated, e.g. result_{{.Mode}}_{{.RunID}}.json)"`
	Publish    bool          `name:"publish" help:"Publish the result on the AMQP results exchange (AMQP_URL)"`
}

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading dotenv failed: %s", err)
	}
}

func newRunID() string {
	return fmt.Sprintf("%016x", rng.NewXoshiro256SS(uint64(time.Now().UnixNano())).Next())
}

func run(ctx context.Context, args Args) (common.Result, error) {
	var estimate montecarlo.Estimate
	var err error
	threads := 1

	start := time.Now()

	switch args.Mode {
	case common.ModeSingle:
		if estimate, err = montecarlo.EstimatePiContext(ctx, rng.NewXoshiro256SS(args.Seed), args.Iterations); err != nil {
			return common.Result{}, err
		}
	case common.ModeParallel:
		cfg := montecarlo.ParallelConfig{
			Iterations: args.Iterations,
			Workers:    args.Workers,
			BaseSeed:   args.Seed,
		}

		if cfg.Partition, err = montecarlo.ParsePartition(args.Partition); err != nil {
			return common.Result{}, err
		}

		if estimate, err = montecarlo.EstimatePiParallel(ctx, cfg); err != nil {
			return common.Result{}, err
		}

		threads = cfg.WorkerCount()
	default:
		return common.Result{}, fmt.Errorf("unknown mode %q", args.Mode)
	}

	elapsed := time.Since(start)

	result := common.NewResult(estimate, args.Mode, threads, args.Seed, elapsed)
	if args.Mode == common.ModeParallel {
		result.Partition = args.Partition
	}

	return result, nil
}

func writeOut(nameTemplate string, packet common.AMQPPacket, jsonData []byte) error {
	outFileNameTemplate, err := template.New("").Parse(nameTemplate)
	if err != nil {
		return fmt.Errorf("parsing the output filename template: %w", err)
	}

	templateArguments := struct {
		RunID string
		Mode  string
		Seed  uint64
	}{
		RunID: packet.RunID,
		Mode:  packet.Result.Mode,
		Seed:  packet.Result.Seed,
	}

	outFileNameBuf := bytes.Buffer{}
	if err = outFileNameTemplate.Execute(&outFileNameBuf, templateArguments); err != nil {
		return fmt.Errorf("executing the output filename template: %w", err)
	}

	return os.WriteFile(outFileNameBuf.String(), jsonData, 0o644)
}

// publish sends one packet and closes the connection whatever the outcome.
func publish(ctx context.Context, url string, packet common.AMQPPacket) error {
	publisher, err := common.NewAMQPPublisher(url)
	if err != nil {
		return fmt.Errorf("connecting to amqp: %w", err)
	}
	defer publisher.Close()

	return publisher.Publish(ctx, packet)
}

func main() {
	var args Args
	_ = kong.Parse(&args, kong.Description("Estimate pi with the xoshiro256** generator and report the run."))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, args.Timeout)
		defer cancel()
	}

	result, err := run(ctx, args)
	if err != nil {
		log.Fatalf("benchmark failed: %s", err)
	}

	packet := common.AMQPPacket{
		RunID:  newRunID(),
		Result: result,
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshalling the result failed: %s", err)
	}

	fmt.Println(string(jsonData))

	if args.Out != "" {
		if err = writeOut(args.Out, packet, jsonData); err != nil {
			log.Fatalf("writing the result failed: %s", err)
		}
	}

	if args.Publish {
		if err = publish(ctx, os.Getenv("AMQP_URL"), packet); err != nil {
			log.Fatalf("publishing run %s failed: %s", packet.RunID, err)
		}

		log.Printf("published run %s", packet.RunID)
	}
}
