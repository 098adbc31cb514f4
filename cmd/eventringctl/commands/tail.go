package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rtsai123/monad/eventring"
	"github.com/rtsai123/monad/eventring/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	tailPath         string
	tailName         string
	tailFromStart    bool
	tailBackBy       uint64
	tailPollInterval time.Duration
	tailMax          int
	tailMetricsURL   string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Map a ring read-only and print events as they're published",
	Long: `tail polls the ring for new events and prints each one's sequence
number, type, payload size and age. When the writer has lapped the reader
since the last poll, tail reports how many events were skipped instead of
silently jumping ahead.`,
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVar(&tailPath, "path", "", "path to an initialized ring file (required)")
	tailCmd.Flags().StringVar(&tailName, "name", "tail", "ring name used in log output")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false, "start from the oldest event still in the window instead of the latest")
	tailCmd.Flags().Uint64Var(&tailBackBy, "back", 0, "start this many events behind the latest published one")
	tailCmd.Flags().DurationVar(&tailPollInterval, "poll-interval", 50*time.Millisecond, "delay between polls when no new event is available")
	tailCmd.Flags().IntVar(&tailMax, "max", 0, "stop after printing this many events, 0 means run until interrupted")
	tailCmd.Flags().StringVar(&tailMetricsURL, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9465)")
	_ = tailCmd.MarkFlagRequired("path")
}

func runTail(cmd *cobra.Command, args []string) error {
	f, err := os.Open(tailPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", tailPath, err)
	}
	defer f.Close()

	ring, err := eventring.Mmap(f, eventring.ProtRead, 0, 0, tailName, nil)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", tailPath, err)
	}
	defer ring.Unmap()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry, tailName)
	if tailMetricsURL != "" {
		stop := serveMetrics(tailMetricsURL, registry)
		defer stop()
	}

	it := ring.NewIterator()
	switch {
	case tailBackBy > 0:
		it.SeekBehind(tailBackBy)
	case tailFromStart:
		it.SeekBehind(ring.Size().DescriptorCapacity)
	default:
		it.Init()
	}

	log.WithFields(logrus.Fields{"path": tailPath, "cursor": it.Cursor()}).Info("tailing")

	printed := 0
	for tailMax == 0 || printed < tailMax {
		desc, skipped, ok := it.Next()
		if !ok {
			time.Sleep(tailPollInterval)
			continue
		}
		if skipped > 0 {
			collector.ObserveGap(skipped)
			log.WithFields(logrus.Fields{"at": desc.Seqno, "skipped": skipped}).Warn("gap detected: writer lapped this reader")
		}
		printEvent(cmd, ring, it, desc)
		printed++
	}
	return nil
}

func printEvent(cmd *cobra.Command, ring *eventring.Ring, it *eventring.Iterator, desc eventring.Descriptor) {
	age := time.Since(time.Unix(0, int64(desc.RecordEpochNanos)))
	if desc.EventType == eventring.EventTypeRecordError {
		var buf [16]byte
		if b, ok := it.PayloadMemcpy(&desc, buf[:]); ok {
			rerr := eventring.DecodeRecordErrorPayload(b)
			cmd.Printf("seqno=%d RECORD_ERROR reason=%s dropped_event_type=%d requested_size=%d age=%s\n",
				desc.Seqno, rerr.ErrorType, rerr.DroppedEventType, rerr.RequestedPayloadSize, age)
			return
		}
		cmd.Printf("seqno=%d RECORD_ERROR (payload already expired) age=%s\n", desc.Seqno, age)
		return
	}
	cmd.Printf("seqno=%d type=%d size=%d age=%s\n", desc.Seqno, desc.EventType, desc.PayloadSize, age)
}
