package commands

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rtsai123/monad/eventring"
	"github.com/rtsai123/monad/eventring/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	recordPath       string
	recordName       string
	recordCount      int
	recordPayload    int
	recordInterval   time.Duration
	recordEventType  uint16
	recordMetricsURL string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Open an existing ring and run a synthetic producer",
	Long: `record maps a ring read-write and publishes synthetic events to it,
useful for load/soak testing and for exercising RECORD_ERROR semantics
(pass --payload-size larger than the ring's payload buffer to see it drop).`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&recordPath, "path", "", "path to an initialized ring file (required)")
	recordCmd.Flags().StringVar(&recordName, "name", "recorder", "ring name used in log output")
	recordCmd.Flags().IntVar(&recordCount, "count", 0, "number of events to record, 0 means run until interrupted")
	recordCmd.Flags().IntVar(&recordPayload, "payload-size", 64, "size in bytes of each synthetic payload")
	recordCmd.Flags().DurationVar(&recordInterval, "interval", 0, "delay between events, 0 means as fast as possible")
	recordCmd.Flags().Uint16Var(&recordEventType, "event-type", 2, "event_type value to publish (must not be 1, reserved for RECORD_ERROR)")
	recordCmd.Flags().StringVar(&recordMetricsURL, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9464)")
	_ = recordCmd.MarkFlagRequired("path")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordEventType == eventring.EventTypeRecordError {
		return fmt.Errorf("--event-type cannot be %d, it is reserved for RECORD_ERROR", eventring.EventTypeRecordError)
	}

	f, err := os.OpenFile(recordPath, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", recordPath, err)
	}
	defer f.Close()

	ring, err := eventring.Mmap(f, eventring.ProtRead|eventring.ProtWrite, 0, 0, recordName, nil)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", recordPath, err)
	}
	defer ring.Unmap()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry, recordName)
	if recordMetricsURL != "" {
		stop := serveMetrics(recordMetricsURL, registry)
		defer stop()
	}

	rec := ring.NewRecorder()
	payload := make([]byte, recordPayload)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Read(payload)

	log.WithFields(logrus.Fields{"path": recordPath, "name": recordName, "count": recordCount}).Info("recording started")

	var contentExt [4]uint64
	produced := 0
	for recordCount == 0 || produced < recordCount {
		seqno := rec.Record(recordEventType, payload, contentExt)
		produced++
		observeRecordOutcome(collector, ring, seqno)
		if recordInterval > 0 {
			time.Sleep(recordInterval)
		}
	}

	log.WithField("produced", produced).Info("recording finished")
	cmd.Printf("recorded %d events to %q\n", produced, recordName)
	return nil
}

// observeRecordOutcome inspects the descriptor that was just published
// to tell whether it is the event the caller asked for or a
// RECORD_ERROR substituted in its place, and updates collector
// accordingly. It re-reads the slot rather than threading the
// information back out of Record, the same way an independent reader
// tailing the ring would discover it.
func observeRecordOutcome(collector *metrics.Collector, ring *eventring.Ring, seqno uint64) {
	it := ring.NewIterator()
	desc, ok := it.TryCopy(seqno)
	if !ok {
		return
	}
	if desc.EventType != eventring.EventTypeRecordError {
		collector.ObserveRecorded()
		return
	}
	var buf [16]byte
	b, ok := it.PayloadMemcpy(&desc, buf[:])
	if !ok {
		return
	}
	rerr := eventring.DecodeRecordErrorPayload(b)
	collector.ObserveDropped(rerr.ErrorType.String())
}
