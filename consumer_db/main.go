package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/xor-shift/pibench/common"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading dotenv failed: %s", err)
	}
}

func main() {
	var err error

	var store *common.Store
	var consumer *common.AMQPConsumer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if store, err = common.OpenStore(common.DBConfigFromEnv()); err != nil {
		log.Fatalln(err)
	}

	defer store.Close()

	if consumer, err = common.NewAMQPConsumer(
		os.Getenv("AMQP_URL"),
		"pi_results_queue_db",
		"pi_results_consumer_db",
		func(packet common.AMQPPacket) error {
			if err := store.Insert(ctx, packet); err != nil {
				return err
			}

			log.Printf("stored run %s (%s/%s, %d iterations, pi = %f)",
				packet.RunID,
				packet.Result.Language,
				packet.Result.Mode,
				packet.Result.Iterations,
				packet.Result.PiEstimate)

			return nil
		}); err != nil {
		log.Fatalf("Failed to set up the amqp consumer: %s", err)
	}

	defer consumer.Close()

	if err = consumer.Start(); err != nil {
		log.Fatalf("Failed to start consuming: %s", err)
	}

	<-ctx.Done()

	if err = consumer.Stop(); err != nil {
		log.Printf("stopping the consumer failed: %s", err)
	}

	consumer.Wait()
}
